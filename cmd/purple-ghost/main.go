package main

import (
	"log/slog"
	"os"

	"github.com/purpleghost/purple-ghost/internal"
	"github.com/purpleghost/purple-ghost/internal/cli"
)

// The entry point for the purple-ghost daemon.
//
// Initializes logging, displays startup information, and executes the root
// command. Started without arguments (as the container entrypoint does), it
// runs the daemon. If any error occurs during execution, it exits with a
// non-zero code.
func main() {
	internal.SetLogLevel(internal.LogLevel())
	slog.SetDefault(internal.NewLogger(os.Stderr))

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("purple-ghost is starting",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
