package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/alecthomas/kong"
	"github.com/purpleghost/purple-ghost/internal"
	"github.com/purpleghost/purple-ghost/internal/paths"
)

// Represents the root command.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Config  string     `short:"c" help:"Configuration file." placeholder:"PATH" type:"path"`
	Socket  string     `short:"s" help:"Override the default control socket path." placeholder:"PATH"`
	Start   StartCmd   `cmd:"" default:"withargs" help:"Run the logging daemon."`
	Status  StatusCmd  `cmd:"" help:"Show the state of a running daemon."`
	Reload  ReloadCmd  `cmd:"" help:"Reload the configuration of a running daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description(heredoc.Doc(`
			Anonymous Twitch chat logger.

			Joins the configured channels and appends every chat message and
			moderation event to one log file per channel. Send SIGHUP or run
			"purple-ghost reload" to apply configuration changes.
		`)),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Applies CLI flags to the global modes and rebuilds the default logger.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	internal.SetLogLevel(internal.LogLevel())
	slog.SetDefault(internal.NewLogger(os.Stderr))
}

// Returns the configuration file selected by flag or default.
func configPath() string {
	if RootCmd.Config != "" {
		return RootCmd.Config
	}
	return paths.Config()
}

// Returns the control socket selected by flag or default.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}
