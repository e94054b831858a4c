package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/costwatch/costwatch/internal/buildinfo"
)

// Represents the root command for the costwatch CLI.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Monitor MonitorCmd `cmd:"" help:"Watch AWS spend on a fixed interval."`
	Check   CheckCmd   `cmd:"" help:"Run a single cost check and exit."`
	Publish PublishCmd `cmd:"" help:"Build the container image and push it to the registry."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(buildinfo.Name),
		kong.Description("Watches AWS usage costs and publishes its own container image.\n\nThe monitor queries Cost Explorer on a schedule and alerts when the projected month-end spend exceeds a threshold. The publish command runs the guarded build-and-push pipeline."),
		kong.UsageOnError(),
		kong.Vars{
			"version": buildinfo.String(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	debug := RootCmd.Debug || buildinfo.IsDebug()
	quiet := RootCmd.Quiet || buildinfo.IsQuiet()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler).WithGroup(buildinfo.Name))
}
