package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/protocol"
)

type fakeController struct {
	reloadErr error
	shutdowns atomic.Int32
}

func (f *fakeController) Status(ctx context.Context) (*protocol.StatusResult, error) {
	return &protocol.StatusResult{
		Connected: true,
		Reloads:   2,
		Channels:  []protocol.ChannelStatus{{Name: "#a", LogFile: "logs/a.txt", Lines: 7}},
	}, nil
}

func (f *fakeController) Reload(ctx context.Context) (*protocol.ReloadResult, error) {
	if f.reloadErr != nil {
		return nil, f.reloadErr
	}
	return &protocol.ReloadResult{Added: []string{"#b"}, Channels: []string{"#a", "#b"}}, nil
}

func (f *fakeController) Shutdown() {
	f.shutdowns.Add(1)
}

func startServer(t *testing.T, ctrl Controller) *Server {
	t.Helper()

	// Unix socket paths are limited to ~100 bytes, t.TempDir can exceed that.
	dir, err := os.MkdirTemp("", "pg")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv, err := New(Config{
		SocketPath: filepath.Join(dir, "s.sock"),
		PIDFile:    filepath.Join(dir, "run", "pg.pid"),
		Controller: ctrl,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestNewRequiresController(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrServer) {
		t.Fatalf("New error = %v, want ErrServer", err)
	}
}

func TestStatus(t *testing.T) {
	srv := startServer(t, &fakeController{})

	payload, err := Call(context.Background(), srv.SocketPath(), protocol.CmdStatus)
	if err != nil {
		t.Fatal(err)
	}

	res, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Running || !res.Connected || res.Reloads != 2 {
		t.Fatalf("status = %+v", res)
	}
	if res.Pid != os.Getpid() {
		t.Fatalf("Pid = %d, want %d", res.Pid, os.Getpid())
	}
	if res.Version == "" || res.Uptime == "" {
		t.Fatalf("Version = %q, Uptime = %q", res.Version, res.Uptime)
	}
	if len(res.Channels) != 1 || res.Channels[0].Lines != 7 {
		t.Fatalf("Channels = %+v", res.Channels)
	}
	if res.Requests != 1 {
		t.Fatalf("Requests = %d, want 1", res.Requests)
	}
}

func TestStatusCountsRequests(t *testing.T) {
	srv := startServer(t, &fakeController{})

	if _, err := Call(context.Background(), srv.SocketPath(), protocol.CmdReload); err != nil {
		t.Fatal(err)
	}
	payload, err := Call(context.Background(), srv.SocketPath(), protocol.CmdStatus)
	if err != nil {
		t.Fatal(err)
	}

	res, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if res.Requests != 2 {
		t.Fatalf("Requests = %d, want 2", res.Requests)
	}
}

func TestReload(t *testing.T) {
	srv := startServer(t, &fakeController{})

	payload, err := Call(context.Background(), srv.SocketPath(), protocol.CmdReload)
	if err != nil {
		t.Fatal(err)
	}

	res, err := protocol.DecodePayload[protocol.ReloadResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Added, []string{"#b"}) {
		t.Fatalf("Added = %v", res.Added)
	}
}

func TestReloadError(t *testing.T) {
	srv := startServer(t, &fakeController{reloadErr: errors.New("bad config")})

	_, err := Call(context.Background(), srv.SocketPath(), protocol.CmdReload)
	if !errors.Is(err, ErrRequest) {
		t.Fatalf("Call error = %v, want ErrRequest", err)
	}
	if !strings.Contains(err.Error(), "bad config") {
		t.Fatalf("error %q does not carry the reload failure", err)
	}
}

func TestShutdown(t *testing.T) {
	ctrl := &fakeController{}
	srv := startServer(t, ctrl)

	if _, err := Call(context.Background(), srv.SocketPath(), protocol.CmdShutdown); err != nil {
		t.Fatal(err)
	}
	if ctrl.shutdowns.Load() != 1 {
		t.Fatalf("Shutdown called %d times, want 1", ctrl.shutdowns.Load())
	}
}

func TestUnknownCommand(t *testing.T) {
	srv := startServer(t, &fakeController{})

	_, err := Call(context.Background(), srv.SocketPath(), protocol.Command("dance"))
	if !errors.Is(err, ErrRequest) || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("Call error = %v", err)
	}
}

func TestMalformedRequest(t *testing.T) {
	srv := startServer(t, &fakeController{})

	conn, err := net.Dial("unix", srv.SocketPath())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := conn.Write([]byte("not json\n")); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decodeResponse(buf[:n]); !errors.Is(err, ErrRequest) {
		t.Fatalf("response error = %v, want ErrRequest", err)
	}
}

func TestStartWritesPIDAndStopCleansUp(t *testing.T) {
	srv := startServer(t, &fakeController{})

	data, err := os.ReadFile(srv.pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != strconv.Itoa(os.Getpid()) {
		t.Fatalf("PID file = %q", data)
	}

	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != socketMode {
		t.Fatalf("socket mode = %v, want %v", info.Mode().Perm(), os.FileMode(socketMode))
	}

	if err := srv.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("second Stop = %v", err)
	}

	if _, err := os.Stat(srv.SocketPath()); !os.IsNotExist(err) {
		t.Fatalf("socket still present: %v", err)
	}
	if _, err := os.Stat(srv.pidFile); !os.IsNotExist(err) {
		t.Fatalf("PID file still present: %v", err)
	}

	if _, err := Call(context.Background(), srv.SocketPath(), protocol.CmdStatus); !errors.Is(err, ErrRequest) {
		t.Fatalf("Call after Stop = %v, want ErrRequest", err)
	}
}
