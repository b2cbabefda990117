package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/purpleghost/purple-ghost/internal/protocol"
)

// Upper bound for a request when the context has no deadline.
const defaultCallTimeout = 30 * time.Second

// Sends one command to the daemon listening at socketPath and returns the
// payload of its response.
//
// Error responses are returned as errors wrapping [ErrRequest].
func Call(ctx context.Context, socketPath string, cmd protocol.Command) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: is the daemon running? %w", ErrRequest, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	data, err := protocol.Encode(cmd, nil)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("%w: sending %s: %w", ErrRequest, cmd, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %w", ErrRequest, cmd, err)
	}

	return decodeResponse(line)
}
