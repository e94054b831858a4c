package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/costwatch/costwatch/internal/costs"
	"github.com/costwatch/costwatch/internal/monitor"
	"github.com/costwatch/costwatch/internal/notify"
	"github.com/costwatch/costwatch/internal/schedule"
)

// Settings shared by the monitor and check commands.
//
// Every field is bound to an environment variable so the monitor can run
// inside a container with no command line at all.
type monitorOptions struct {
	Region         string  `help:"AWS region for the Cost Explorer API." default:"us-east-1" env:"AWS_REGION"`
	AccessKey      string  `help:"Static AWS access key ID. Unset falls back to the default credential chain." env:"AWS_ACCESS_KEY_ID"`
	SecretKey      string  `help:"Static AWS secret access key." env:"AWS_SECRET_ACCESS_KEY"`
	Threshold      float64 `help:"Projected month-end cost (USD) above which alerts are sent." required:"" env:"THRESHOLD"`
	DiscordWebhook string  `help:"Discord webhook URL for alerts." env:"DISCORD_WEBHOOK_URL"`
	GotifyHost     string  `help:"Gotify server base URL." env:"GOTIFY_HOST"`
	GotifyToken    string  `help:"Gotify application token." env:"GOTIFY_TOKEN"`
	NtfyServer     string  `help:"ntfy server base URL." default:"https://ntfy.sh" env:"NTFY_SERVER"`
	NtfyTopic      string  `help:"ntfy topic for alerts." env:"NTFY_TOPIC"`
	NtfyToken      string  `help:"ntfy access token." env:"NTFY_ACCESS_TOKEN"`
	Healthcheck    string  `help:"Healthchecks URL pinged after every run." env:"HEALTHCHECKS_URL"`
}

// Assembles a monitor from the configured cost source and notifiers.
//
// Notification channels without configuration are left out, so a minimal
// deployment can run with Cost Explorer access alone.
func (o *monitorOptions) monitor(ctx context.Context) (*monitor.Monitor, error) {
	explorer, err := costs.NewExplorer(ctx, costs.Config{
		Region:    o.Region,
		AccessKey: o.AccessKey,
		SecretKey: o.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	var notifiers []notify.Notifier
	if o.DiscordWebhook != "" {
		notifiers = append(notifiers, notify.NewDiscord(o.DiscordWebhook))
	}
	if o.GotifyHost != "" {
		notifiers = append(notifiers, notify.NewGotify(o.GotifyHost, o.GotifyToken))
	}
	if o.NtfyTopic != "" {
		notifiers = append(notifiers, notify.NewNtfy(o.NtfyServer, o.NtfyTopic, o.NtfyToken))
	}

	var health *notify.Healthcheck
	if o.Healthcheck != "" {
		health = notify.NewHealthcheck(o.Healthcheck)
	}

	return &monitor.Monitor{
		Source:    explorer,
		Notifiers: notifiers,
		Threshold: o.Threshold,
		Health:    health,
	}, nil
}

// Represents the 'costwatch monitor' command.
type MonitorCmd struct {
	monitorOptions `embed:""`

	Interval time.Duration `short:"i" help:"Interval between cost checks." default:"1h" env:"INTERVAL_SCHEDULE"`
}

// Executes the monitor command.
//
// Runs a cost check on the configured interval and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM). Failures of individual runs are
// logged; the loop keeps going.
func (c *MonitorCmd) Run(ctx context.Context) error {
	m, err := c.monitor(ctx)
	if err != nil {
		return err
	}

	slog.Info("costwatch is running", "interval", c.Interval, "threshold", c.Threshold)

	schedule.Every(ctx, c.Interval, func(ctx context.Context) {
		if err := m.RunOnce(ctx); err != nil {
			slog.Error("cost check failed", "error", err)
		}
	})

	slog.Info("shutting down")
	return nil
}

// Represents the 'costwatch check' command.
type CheckCmd struct {
	monitorOptions `embed:""`
}

// Executes a single cost check and exits with its result.
func (c *CheckCmd) Run(ctx context.Context) error {
	m, err := c.monitor(ctx)
	if err != nil {
		return err
	}
	return m.RunOnce(ctx)
}
