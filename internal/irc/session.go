package irc

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// Settings of a [Session].
type SessionConfig struct {
	Options         Options       // Connection settings.
	Caps            []string      // Capabilities requested after every connect.
	InitialInterval time.Duration // First reconnect delay. Defaults to one second.
	MaxInterval     time.Duration // Reconnect delay ceiling. Defaults to two minutes.
}

// Keeps an IRC connection alive and tracks joined channels.
//
// Inbound messages of every connection are forwarded to a single channel,
// so consumers are unaware of reconnects. [Session.Join] and [Session.Part]
// update the tracked set and are applied to the live connection if there is
// one; the set is re-joined after each reconnect.
type Session struct {
	cfg      SessionConfig
	dial     func(context.Context, Options) (*Client, error)
	messages chan Message

	mu       sync.Mutex
	client   *Client  // Live connection, nil while disconnected.
	channels []string // Channels to be joined on every connection.
	connects int      // Number of successful connects.
}

// Creates a session that will join channels once connected.
//
// Nothing happens until [Session.Run] is called.
func NewSession(cfg SessionConfig, channels []string) *Session {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = max(2*time.Minute, cfg.InitialInterval)
	}

	return &Session{
		cfg:      cfg,
		dial:     Dial,
		messages: make(chan Message, 64),
		channels: slices.Clone(channels),
	}
}

// Returns the channel of inbound messages, closed when [Session.Run]
// returns.
func (s *Session) Messages() <-chan Message {
	return s.messages
}

// Connects and forwards messages until the context is cancelled.
//
// Failed dials, lost connections and server RECONNECT requests are all
// followed by a backoff delay before the next dial. The delay grows across
// attempts and is reset once a connection delivers its first message. Run
// returns nil on cancellation.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.messages)

	b := s.newBackOff()
	for {
		client, err := s.connect(ctx)
		if err == nil {
			err = s.pump(ctx, client, b)
			s.setClient(nil)
			client.Close()
		}
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		slog.Warn("irc connection lost, reconnecting", "address", s.cfg.Options.Address, "error", err, "retry_in", wait)

		if !sleep(ctx, wait) {
			return nil
		}
	}
}

// Returns the reconnect delay policy of the session. It never gives up.
func (s *Session) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Waits for d, returning false if the context ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Dials once and registers the connection.
func (s *Session) connect(ctx context.Context) (*Client, error) {
	c, err := s.dial(ctx, s.cfg.Options)
	if err != nil {
		return nil, err
	}
	if err := s.register(c); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Negotiates capabilities, identifies and joins the tracked channels.
//
// The client becomes the live connection before the JOIN is sent, so a
// concurrent Join or Part is never lost; at worst a channel is joined twice,
// which servers ignore.
func (s *Session) register(c *Client) error {
	if err := c.CapReq(s.cfg.Caps...); err != nil {
		return err
	}
	if err := c.Identify(); err != nil {
		return err
	}

	s.mu.Lock()
	s.client = c
	s.connects++
	channels := slices.Clone(s.channels)
	s.mu.Unlock()

	if err := c.Join(channels...); err != nil {
		s.setClient(nil)
		return err
	}

	slog.Info("irc session registered", "address", s.cfg.Options.Address, "nickname", s.cfg.Options.Nickname, "channels", len(channels))
	return nil
}

// Forwards messages from client until it disconnects, asks for a
// reconnect, or the context ends. The first message resets b.
func (s *Session) pump(ctx context.Context, client *Client, b backoff.BackOff) error {
	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-client.Messages():
			if !ok {
				return client.Err()
			}
			if first {
				b.Reset()
				first = false
			}
			if msg.Command == "RECONNECT" {
				return ErrReconnect
			}

			select {
			case s.messages <- msg:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (s *Session) setClient(c *Client) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}

// Adds channels to the tracked set and joins them on the live connection.
//
// Channels already tracked are ignored.
func (s *Session) Join(channels ...string) error {
	s.mu.Lock()
	var added []string
	for _, c := range channels {
		if !slices.Contains(s.channels, c) {
			s.channels = append(s.channels, c)
			added = append(added, c)
		}
	}
	client := s.client
	s.mu.Unlock()

	if client == nil || len(added) == 0 {
		return nil
	}
	return errors.Wrap(client.Join(added...), "join")
}

// Removes channels from the tracked set and leaves them on the live
// connection.
func (s *Session) Part(channels ...string) error {
	s.mu.Lock()
	var removed []string
	for _, c := range channels {
		if i := slices.Index(s.channels, c); i >= 0 {
			s.channels = slices.Delete(s.channels, i, i+1)
			removed = append(removed, c)
		}
	}
	client := s.client
	s.mu.Unlock()

	if client == nil || len(removed) == 0 {
		return nil
	}
	return errors.Wrap(client.Part(removed...), "part")
}

// Returns the tracked channels.
func (s *Session) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.channels)
}

// Reports whether a connection is currently registered.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Returns how many times the session has connected.
func (s *Session) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}
