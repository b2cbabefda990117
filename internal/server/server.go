package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/paths"
	"github.com/purpleghost/purple-ghost/internal/protocol"
)

const (

	// Group name used to grant socket access. Members of this group can
	// query and reload the daemon without owning the process.
	socketGroup = "purple-ghost"

	// File mode applied to the Unix socket. Owner and group get read-write
	// (required for connect); others get no access.
	socketMode = 0660
)

// The daemon operations exposed over the socket.
type Controller interface {

	// Returns channel and connection state. Version, PID and uptime are
	// filled in by the server.
	Status(ctx context.Context) (*protocol.StatusResult, error)

	// Reloads the configuration file and returns what changed.
	Reload(ctx context.Context) (*protocol.ReloadResult, error)

	// Asks the daemon to stop. Must not block.
	Shutdown()
}

// Holds server configuration.
type Config struct {
	SocketPath string     // Override for the Unix socket path. Empty uses the default.
	PIDFile    string     // Override for the PID file path. Empty uses the default.
	Controller Controller // Target of dispatched commands.
}

// Listens on a Unix domain socket and dispatches commands.
type Server struct {
	socketPath string        // Path to the Unix socket file.
	pidFile    string        // Path to the PID file.
	ctrl       Controller    // Target of dispatched commands.
	listener   net.Listener  // Listener for incoming connections.
	startedAt  time.Time     // Timestamp when the server started.
	requests   int           // Total number of commands processed.
	done       chan struct{} // Channel to signal server shutdown.
	stopOnce   sync.Once     // Guards done.
	mu         sync.Mutex    // Mutex to protect shared state.
}

// Creates a new server instance.
//
// The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.Wrap(ErrServer, "controller is required")
	}

	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	pidFile := cfg.PIDFile
	if pidFile == "" {
		pidFile = paths.PIDFile()
	}

	return &Server{
		socketPath: socketPath,
		pidFile:    pidFile,
		ctrl:       cfg.Controller,
		done:       make(chan struct{}),
	}, nil
}

// Returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Opens the Unix socket and begins accepting connections.
func (s *Server) Start() error {
	listener, err := listen(s.socketPath)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := writePID(s.pidFile); err != nil {
		slog.Warn("failed to write PID file", "path", s.pidFile, "error", err)
	}

	slog.Info("control socket listening", "path", s.socketPath)

	go s.accept()
	return nil
}

// Creates the Unix socket listener, removes any stale socket from a previous
// run, and applies permissions.
func listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, socketPath, err)
	}

	if err := setSocketPermissions(socketPath); err != nil {
		listener.Close()
		return nil, err
	}

	return listener, nil
}

// Restricts socket access to owner and group.
func setSocketPermissions(socketPath string) error {
	if err := os.Chmod(socketPath, socketMode); err != nil {
		return fmt.Errorf("%w: failed to chmod socket %s: %w", ErrServer, socketPath, err)
	}

	if g, err := user.LookupGroup(socketGroup); err == nil {
		if gid, err := strconv.Atoi(g.Gid); err == nil {
			if err := os.Chown(socketPath, -1, gid); err != nil {
				slog.Warn("failed to chgrp socket", "group", socketGroup, "error", err)
			}
		}
	} else {
		slog.Debug("socket group not found, socket accessible to owner only", "group", socketGroup)
	}

	return nil
}

// Shuts down the server and cleans up resources. Safe to call more than
// once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		if s.listener != nil {
			s.listener.Close()
			os.Remove(s.socketPath)
			os.Remove(s.pidFile)
		}
	})
	return nil
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Accepts connections in a loop until the server shuts down.
func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		go s.handle(conn)
	}
}

// Processes a single connection.
//
// Reads one newline-delimited JSON message, dispatches the command, and
// writes the response. The connection is closed after one exchange.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	line, err := reader.ReadBytes('\n')
	if err != nil {
		slog.Error("read error", "error", err)
		return
	}

	env, _, err := protocol.Decode(line)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	slog.Debug("command received", "command", env.Command)

	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	ctx, cancel := contextWithDisconnect(context.Background(), reader)
	defer cancel()

	s.dispatch(ctx, conn, env.Command)
}

// Routes a command to the appropriate handler.
func (s *Server) dispatch(ctx context.Context, conn net.Conn, cmd protocol.Command) {
	switch cmd {
	case protocol.CmdStatus:
		s.handleStatus(ctx, conn)
	case protocol.CmdReload:
		s.handleReload(ctx, conn)
	case protocol.CmdShutdown:
		s.handleShutdown(conn)
	default:
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{
			Message: fmt.Sprintf("unknown command: %s", cmd),
		})
	}
}

// Writes a JSON envelope response to the connection.
func (s *Server) respond(conn net.Conn, cmd protocol.Command, payload any) {
	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// Writes the daemon PID so operators can signal it (kill -HUP).
func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}

// Returns a derived context that is cancelled when the remote end of the
// connection closes.
//
// Detection works by reading from r in a background goroutine. The read blocks
// until the peer closes the connection, at which point it returns an error and
// the derived context is cancelled. The caller must ensure that no further data
// is expected on r for the lifetime of the returned context. The returned
// [context.CancelFunc] must always be called to release resources.
func contextWithDisconnect(parent context.Context, r io.Reader) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		buf := make([]byte, 1)
		r.Read(buf)
		cancel()
	}()

	return ctx, cancel
}

// Decodes a response envelope, turning error responses into Go errors.
func decodeResponse(line []byte) (json.RawMessage, error) {
	env, payload, err := protocol.Decode(line)
	if err != nil {
		return nil, err
	}

	switch env.Command {
	case protocol.CmdOK:
		return payload, nil
	case protocol.CmdError:
		res, err := protocol.DecodePayload[protocol.ErrorResult](payload)
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrap(ErrRequest, res.Message)
	default:
		return nil, errors.Wrapf(protocol.ErrProtocol, "unexpected response %q", env.Command)
	}
}
