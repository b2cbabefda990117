package ghost

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/config"
	"github.com/purpleghost/purple-ghost/internal/irc"
	"github.com/purpleghost/purple-ghost/internal/protocol"
	"github.com/purpleghost/purple-ghost/internal/server"
	"github.com/purpleghost/purple-ghost/internal/stats"
	"golang.org/x/sync/errgroup"
)

// Settings of [RunDaemon].
type DaemonConfig struct {
	ConfigPath string // Configuration file.
	SocketPath string // Control socket. Empty uses the default.
	PIDFile    string // PID file. Empty uses the default.
	StatsPath  string // Badger directory. Empty keeps statistics in memory.
	Watch      bool   // Reload when the configuration file changes.
}

// Runs the daemon until the context is cancelled, a shutdown is requested
// over the control socket, or the IRC session ends.
//
// The configuration must load and the log files must open for the daemon to
// start. The statistics store and the control socket are optional: when they
// cannot be set up the daemon logs a warning and runs without them
// (statistics fall back to memory).
func RunDaemon(ctx context.Context, dc DaemonConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := openStats(dc.StatsPath)
	defer st.Close()

	g, err := New(dc.ConfigPath, st)
	if err != nil {
		return err
	}
	defer g.Close()

	cfg := g.Config()
	session := irc.NewSession(irc.SessionConfig{
		Options: irc.Options{
			Address:  cfg.Server,
			TLS:      cfg.TLS,
			Nickname: cfg.Nickname,
		},
		Caps:            []string{irc.CapTags, irc.CapCommands},
		InitialInterval: cfg.Reconnect.InitialInterval,
		MaxInterval:     cfg.Reconnect.MaxInterval,
	}, cfg.Channels)
	g.Attach(session)

	srv, err := server.New(server.Config{
		SocketPath: dc.SocketPath,
		PIDFile:    dc.PIDFile,
		Controller: &controller{ghost: g, cancel: cancel},
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		slog.Warn("control socket unavailable", "error", err)
	} else {
		defer srv.Stop()
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return session.Run(ctx) })
	eg.Go(func() error { return g.Run(ctx) })
	eg.Go(func() error { return reloadOnSignal(ctx, g) })

	if dc.Watch {
		if w, err := config.Watch(dc.ConfigPath); err != nil {
			slog.Warn("config file will not be watched", "error", err)
		} else {
			defer w.Close()
			eg.Go(func() error { return w.Run(ctx) })
			eg.Go(func() error { return reloadOn(ctx, g, w.Changes()) })
		}
	}

	slog.Info("purple-ghost is running",
		"server", cfg.Server,
		"nickname", cfg.Nickname,
		"channels", len(cfg.Channels),
	)

	err = eg.Wait()
	slog.Info("shutting down")
	return err
}

// Opens the statistics store, falling back to memory.
func openStats(path string) *stats.Store {
	if path != "" {
		st, err := stats.Open(path)
		if err == nil {
			return st
		}
		slog.Warn("statistics will not persist", "path", path, "error", err)
	}

	st, err := stats.OpenInMemory()
	if err != nil {
		// Badger in memory only fails on invalid options.
		panic(err)
	}
	return st
}

// Reloads on every SIGHUP.
func reloadOnSignal(ctx context.Context, g *Ghost) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			slog.Info("SIGHUP received")
			if _, err := g.Reload(ctx); errors.Is(err, ErrStopped) {
				return nil
			}
		}
	}
}

// Reloads on every value received from triggers.
//
// Reload failures are logged by the reload itself and do not stop the loop.
func reloadOn(ctx context.Context, g *Ghost, triggers <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-triggers:
			if _, err := g.Reload(ctx); errors.Is(err, ErrStopped) {
				return nil
			}
		}
	}
}

// Exposes a running daemon to the control socket.
type controller struct {
	ghost  *Ghost
	cancel context.CancelFunc
}

func (c *controller) Status(ctx context.Context) (*protocol.StatusResult, error) {
	return c.ghost.Status(ctx)
}

func (c *controller) Reload(ctx context.Context) (*protocol.ReloadResult, error) {
	return c.ghost.Reload(ctx)
}

func (c *controller) Shutdown() {
	c.cancel()
}
