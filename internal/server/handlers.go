package server

import (
	"context"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/purpleghost/purple-ghost/internal"
	"github.com/purpleghost/purple-ghost/internal/protocol"
)

// Handles a status command.
func (s *Server) handleStatus(ctx context.Context, conn net.Conn) {
	result, err := s.ctrl.Status(ctx)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	result.Running = true
	result.Version = internal.VersionString()
	result.Pid = os.Getpid()
	result.Uptime = time.Since(s.startedAt).Truncate(time.Second).String()

	s.mu.Lock()
	result.Requests = s.requests
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a reload command.
//
// Responds once the reload has been applied, or with the reason it was
// rejected.
func (s *Server) handleReload(ctx context.Context, conn net.Conn) {
	result, err := s.ctrl.Reload(ctx)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, result)
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	s.ctrl.Shutdown()
}
