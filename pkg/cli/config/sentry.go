package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/gdship/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting settings
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string

	enabled bool
}

// Flags returns CLI flags for Sentry
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN; fatal errors are reported when set",
			Destination: &c.DSN,
			Sources:     envVars("SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "ci",
			Destination: &c.Environment,
			Sources:     envVars("SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry SDK. It does nothing without a DSN.
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     "gdship@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize Sentry")
	}
	c.enabled = true
	return nil
}

// Report sends err to Sentry and waits for delivery. runID is attached as a tag.
func (c *Sentry) Report(err error, runID string) {
	if !c.enabled || err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
		sentry.CaptureException(err)
	})
	sentry.Flush(2 * time.Second)
}
