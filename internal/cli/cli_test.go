package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/purpleghost/purple-ghost/internal/protocol"
)

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printStatus(&buf, &protocol.StatusResult{
		Version:   "1.0.0",
		Pid:       42,
		Uptime:    "1h0m0s",
		Connected: true,
		Channels: []protocol.ChannelStatus{
			{Name: "#a", LogFile: "logs/a.txt", Lines: 12345, LastEvent: time.Now().Add(-time.Hour), LastCommand: "PRIVMSG"},
			{Name: "#b", LogFile: "logs/b.txt"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"1.0.0", "connected", "12,345", "1 hour ago", "PRIVMSG", "logs/a.txt", "never"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReload(t *testing.T) {
	var buf bytes.Buffer
	printReload(&buf, &protocol.ReloadResult{
		Added:    []string{"#c"},
		Removed:  []string{"#a", "#d"},
		Channels: []string{"#b", "#c"},
	})

	out := buf.String()
	for _, want := range []string{"2 channel(s)", "joined: #c", "left:   #a, #d"} {
		if !strings.Contains(out, want) {
			t.Fatalf("reload output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPathFlag(t *testing.T) {
	prev := RootCmd.Config
	t.Cleanup(func() { RootCmd.Config = prev })

	RootCmd.Config = "/etc/purple-ghost/config.yaml"
	if got := configPath(); got != "/etc/purple-ghost/config.yaml" {
		t.Fatalf("configPath = %q", got)
	}
}
