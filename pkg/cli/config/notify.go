package config

import (
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Notify holds release notification settings
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
	SlackChannel    string
}

// Flags returns CLI flags for notifications
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook notified after a release is published",
			Destination: &c.SlackWebhookURL,
			Sources:     envVars("SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.SlackChannel,
			Sources:     envVars("SLACK_CHANNEL"),
		},
	}
}

// NewNotifier returns nil when no webhook is configured
func (c *Notify) NewNotifier() interfaces.Notifier {
	if c.SlackWebhookURL == "" {
		return nil
	}

	var opts []slack.Option
	if c.SlackChannel != "" {
		opts = append(opts, slack.WithChannel(c.SlackChannel))
	}
	return slack.NewNotifier(c.SlackWebhookURL, opts...)
}
