package cli

import (
	"context"
	"log/slog"

	"github.com/purpleghost/purple-ghost/internal/ghost"
	"github.com/purpleghost/purple-ghost/internal/paths"
)

// Represents the 'purple-ghost start' command.
type StartCmd struct {
	NoWatch     bool `help:"Do not reload when the configuration file changes."`
	MemoryStats bool `help:"Keep channel statistics in memory only."`
}

// Executes the start command.
//
// Runs the daemon and blocks until the context is cancelled (SIGINT or
// SIGTERM), a shutdown is requested over the control socket, or the IRC
// session ends.
func (c *StartCmd) Run(ctx context.Context) error {
	statsPath := paths.Stats()
	if c.MemoryStats {
		statsPath = ""
	}

	cfg := ghost.DaemonConfig{
		ConfigPath: configPath(),
		SocketPath: socketPath(),
		StatsPath:  statsPath,
		Watch:      !c.NoWatch,
	}

	slog.Debug("starting daemon", "config", cfg.ConfigPath, "socket", cfg.SocketPath, "stats", cfg.StatsPath)

	return ghost.RunDaemon(ctx, cfg)
}
