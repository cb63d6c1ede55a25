package slack

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
	channel    string
}

// Option configures the notifier
type Option func(*notifier)

// WithChannel overrides the channel configured on the webhook
func WithChannel(channel string) Option {
	return func(n *notifier) {
		n.channel = channel
	}
}

// NewNotifier creates a Notifier posting to a Slack incoming webhook
func NewNotifier(webhookURL string, opts ...Option) interfaces.Notifier {
	n := &notifier{webhookURL: webhookURL}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *notifier) NotifyRelease(ctx context.Context, repo model.Repository, release *model.Release) error {
	if release == nil {
		return goerr.New("release is nil")
	}

	msg := buildMessage(repo, release)
	if n.channel != "" {
		msg.Channel = n.channel
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack message",
			goerr.V("repository", repo.String()),
			goerr.V("tag", release.TagName),
		)
	}

	ctxlog.From(ctx).Info("Posted release notification", "repository", repo.String(), "tag", release.TagName)
	return nil
}

func buildMessage(repo model.Repository, release *model.Release) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{Title: "Repository", Value: repo.String(), Short: true},
		{Title: "Tag", Value: release.TagName, Short: true},
	}
	if len(release.Assets) > 0 {
		fields = append(fields, slack.AttachmentField{
			Title: "Assets",
			Value: strings.Join(release.Assets, "\n"),
		})
	}

	return &slack.WebhookMessage{
		Text: "Released " + repo.String() + " " + release.TagName,
		Attachments: []slack.Attachment{
			{
				Color:     "good",
				Title:     release.Name,
				TitleLink: release.URL,
				Fields:    fields,
			},
		},
	}
}
