package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigPrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if got := Config(); got == ConfigFileName {
		t.Fatalf("Config() = %q without a local file, want XDG path", got)
	}

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("channels: []\n"), DefaultFileMode); err != nil {
		t.Fatal(err)
	}

	if got := Config(); got != ConfigFileName {
		t.Fatalf("Config() = %q, want %q", got, ConfigFileName)
	}
}

func TestRuntimeFiles(t *testing.T) {
	if filepath.Dir(Socket()) != Runtime() {
		t.Fatalf("Socket() = %q, not under %q", Socket(), Runtime())
	}
	if filepath.Dir(PIDFile()) != Runtime() {
		t.Fatalf("PIDFile() = %q, not under %q", PIDFile(), Runtime())
	}
	if !strings.HasSuffix(Socket(), ".sock") {
		t.Fatalf("Socket() = %q, want .sock suffix", Socket())
	}
}

func TestStatsUnderState(t *testing.T) {
	if filepath.Dir(Stats()) != State() {
		t.Fatalf("Stats() = %q, not under %q", Stats(), State())
	}
}
