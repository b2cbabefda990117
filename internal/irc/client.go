package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (

	// Largest accepted line. IRCv3 allows 8191 bytes of tags plus 512 bytes
	// for the rest of the message.
	maxLineLength = 8191 + 512

	// Time allowed for the TCP and TLS handshakes.
	dialTimeout = 30 * time.Second

	// Time allowed for a single write.
	writeTimeout = 10 * time.Second
)

// Connection settings.
type Options struct {
	Address   string      // Server as host:port.
	TLS       bool        // Whether to use TLS.
	TLSConfig *tls.Config // Optional TLS settings. ServerName defaults to the address host.
	Nickname  string      // Nickname used by [Client.Identify].
}

// One IRC connection.
type Client struct {
	conn      net.Conn
	nickname  string
	messages  chan Message  // Parsed inbound messages. Closed when the connection ends.
	done      chan struct{} // Closed when the read loop exits.
	closing   chan struct{} // Closed by Close.
	err       error         // Why the read loop exited. Valid after done is closed.
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// Connects to the server described by opts.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}

	var (
		conn net.Conn
		err  error
	)
	if opts.TLS {
		cfg := opts.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{}
		} else {
			cfg = cfg.Clone()
		}
		if cfg.ServerName == "" {
			host, _, _ := net.SplitHostPort(opts.Address)
			cfg.ServerName = host
		}
		td := &tls.Dialer{NetDialer: dialer, Config: cfg}
		conn, err = td.DialContext(ctx, "tcp", opts.Address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", opts.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDial, opts.Address, err)
	}

	slog.Debug("irc connected", "address", opts.Address, "tls", opts.TLS)

	return NewClient(conn, opts.Nickname), nil
}

// Wraps an established connection and starts reading from it.
func NewClient(conn net.Conn, nickname string) *Client {
	c := &Client{
		conn:     conn,
		nickname: nickname,
		messages: make(chan Message, 64),
		done:     make(chan struct{}),
		closing:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Returns the channel of inbound messages.
//
// The channel is closed when the connection ends; [Client.Err] then reports
// why.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Returns a channel that is closed once the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Returns the reason the connection ended, or nil while it is alive.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Writes one message.
func (c *Client) Send(msg Message) error {
	line, err := msg.Line()
	if err != nil {
		return errors.Wrapf(err, "encoding %s", msg.Command)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write([]byte(line)); err != nil {
		return errors.Wrapf(err, "sending %s", msg.Command)
	}
	return nil
}

// Requests the given capabilities in a single CAP REQ.
func (c *Client) CapReq(caps ...string) error {
	if len(caps) == 0 {
		return nil
	}
	return c.Send(NewMessage("CAP", "REQ", strings.Join(caps, " ")))
}

// Registers the connection with NICK and USER.
//
// No PASS is sent: anonymous Twitch nicknames need none.
func (c *Client) Identify() error {
	if err := c.Send(NewMessage("NICK", c.nickname)); err != nil {
		return err
	}
	return c.Send(NewMessage("USER", c.nickname, "0", "*", c.nickname))
}

// Joins channels with a single comma-separated JOIN. No-op when empty.
func (c *Client) Join(channels ...string) error {
	if len(channels) == 0 {
		return nil
	}
	return c.Send(NewMessage("JOIN", strings.Join(channels, ",")))
}

// Leaves channels with a single comma-separated PART. No-op when empty.
func (c *Client) Part(channels ...string) error {
	if len(channels) == 0 {
		return nil
	}
	return c.Send(NewMessage("PART", strings.Join(channels, ",")))
}

// Closes the connection. The read loop exits with [ErrClosed].
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		err = c.conn.Close()
	})
	return err
}

// Reads lines until the connection ends.
//
// PINGs are answered before being delivered. Lines that fail to parse are
// logged and skipped.
func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.messages)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 4096), maxLineLength+2)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		msg, err := Parse(line)
		if err != nil {
			slog.Debug("skipping malformed irc line", "line", line, "error", err)
			continue
		}

		if msg.Command == "PING" {
			if err := c.Send(NewMessage("PONG", msg.Params...)); err != nil {
				slog.Warn("failed to answer ping", "error", err)
			}
		}

		select {
		case c.messages <- msg:
		case <-c.closing:
			c.err = ErrClosed
			return
		}
	}

	select {
	case <-c.closing:
		c.err = ErrClosed
	default:
		if err := scanner.Err(); err != nil {
			c.err = fmt.Errorf("%w: %w", ErrDisconnected, err)
		} else {
			c.err = ErrDisconnected
		}
	}
}
