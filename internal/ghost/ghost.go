package ghost

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/purpleghost/purple-ghost/internal/chatlog"
	"github.com/purpleghost/purple-ghost/internal/config"
	"github.com/purpleghost/purple-ghost/internal/irc"
	"github.com/purpleghost/purple-ghost/internal/protocol"
	"github.com/purpleghost/purple-ghost/internal/stats"
)

// The IRC side of the daemon, implemented by [irc.Session].
type Session interface {
	Messages() <-chan irc.Message
	Join(channels ...string) error
	Part(channels ...string) error
	Connected() bool
}

// Logs the chat of the configured channels.
type Ghost struct {
	configPath string           // File reloaded on request.
	stats      *stats.Store     // Per-channel counters.
	session    Session          // Source of messages, target of JOIN/PART.
	requests   chan func()      // Work executed on the Run goroutine.
	done       chan struct{}    // Closed when Run returns.
	mu         sync.Mutex       // Guards the fields below for readers outside Run.
	cfg        *config.Config   // Active configuration.
	logs       *chatlog.Manager // Log files of the active channels.
	reloads    int              // Number of successful reloads.
}

// Loads the configuration at configPath and opens the log files of its
// channels.
//
// A session must be attached with [Ghost.Attach] before [Ghost.Run].
func New(configPath string, st *stats.Store) (*Ghost, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logs, err := chatlog.Open(cfg.LogPath, cfg.Channels, time.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("log files opened", "dir", cfg.LogPath, "channels", cfg.Channels)

	return &Ghost{
		configPath: configPath,
		stats:      st,
		requests:   make(chan func()),
		done:       make(chan struct{}),
		cfg:        cfg,
		logs:       logs,
	}, nil
}

// Sets the session messages are read from.
func (g *Ghost) Attach(s Session) {
	g.session = s
}

// Returns the active configuration.
func (g *Ghost) Config() *config.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// Processes messages and requests until the context is cancelled or the
// session's message channel closes.
func (g *Ghost) Run(ctx context.Context) error {
	defer close(g.done)

	messages := g.session.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil

		case fn := <-g.requests:
			fn()

		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrSessionEnded
			}
			g.handle(msg)
		}
	}
}

// Runs fn on the Run goroutine and waits for it to complete.
func (g *Ghost) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case g.requests <- wrapped:
	case <-g.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// Reloads the configuration file.
//
// Removed channels are parted, the log files are reopened for the new
// channel set and added channels are joined. If the file cannot be loaded or
// the new log files cannot be opened, the running configuration stays in
// effect and an error wrapping [ErrReload] is returned.
func (g *Ghost) Reload(ctx context.Context) (*protocol.ReloadResult, error) {
	var (
		result *protocol.ReloadResult
		err    error
	)
	if doErr := g.do(ctx, func() { result, err = g.reload() }); doErr != nil {
		return nil, doErr
	}
	return result, err
}

func (g *Ghost) reload() (*protocol.ReloadResult, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		slog.Error("reload failed, keeping current config", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrReload, err)
	}

	prev := g.Config()
	if prev.EndpointChanged(cfg) {
		slog.Warn("server, nickname and tls changes take effect on restart")
	}

	added, removed := config.Diff(prev.Channels, cfg.Channels)

	logs, err := chatlog.Open(cfg.LogPath, cfg.Channels, time.Now())
	if err != nil {
		slog.Error("reload failed, keeping current config", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrReload, err)
	}

	if err := g.session.Part(removed...); err != nil {
		slog.Warn("failed to leave removed channels", "channels", removed, "error", err)
	}

	g.mu.Lock()
	old := g.logs
	g.logs = logs
	g.cfg = cfg
	g.reloads++
	g.mu.Unlock()

	if err := old.Close(); err != nil {
		slog.Warn("failed to close previous log files", "error", err)
	}

	if err := g.session.Join(added...); err != nil {
		slog.Warn("failed to join added channels", "channels", added, "error", err)
	}

	slog.Info("reloaded config", "channels", len(cfg.Channels), "added", added, "removed", removed)

	return &protocol.ReloadResult{
		Added:    added,
		Removed:  removed,
		Channels: slices.Clone(cfg.Channels),
	}, nil
}

// Returns the connection state and the counters of every active channel.
func (g *Ghost) Status(ctx context.Context) (*protocol.StatusResult, error) {
	result := &protocol.StatusResult{
		Connected: g.session != nil && g.session.Connected(),
	}

	// A reload closes the previous manager once it has been swapped out, so
	// the channel list is read while the active one is pinned.
	g.mu.Lock()
	result.Reloads = g.reloads
	for _, channel := range g.logs.Channels() {
		result.Channels = append(result.Channels, protocol.ChannelStatus{
			Name:    channel,
			LogFile: g.logs.Path(channel),
		})
	}
	g.mu.Unlock()

	for i := range result.Channels {
		cs := &result.Channels[i]

		st, ok, err := g.stats.Get(cs.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			cs.Lines = st.Lines
			cs.LastEvent = st.LastEvent
			cs.LastCommand = st.LastCommand
		}
	}

	return result, nil
}

// Closes the log files.
func (g *Ghost) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logs.Close()
}
