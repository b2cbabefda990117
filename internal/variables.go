package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (

	// Name of the binary, used for logging, paths and the CLI.
	Name = "purple-ghost"

	// Placeholder for a build variable that was not set.
	defaultUndefined = "(undefined)"

	// Version string of a build made outside the image pipeline.
	defaultLocalBuild = "(local)"

	// Stage that is omitted from version strings.
	mainBranch = "main"
)

// Set with -ldflags "-X github.com/purpleghost/purple-ghost/internal.<name>=<value>".
var (
	version   = "" // Release version, "v" prefix allowed (e.g., "v0.3.0")
	stage     = "" // Git branch the image was built from (e.g., "main")
	gitCommit = "" // Commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Default for quiet mode
	rawDebug   = "false" // Default for debug mode
	rawVerbose = "false" // Default for verbose logging
)

// Returns the release version without its "v" prefix, or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the lowercased build stage, or "(undefined)".
func Stage() string {
	if s := strings.TrimSpace(stage); s != "" {
		return strings.ToLower(s)
	}
	return defaultUndefined
}

// Returns the commit the binary was built from.
//
// Falls back to the VCS revision stamped by the Go toolchain when the linker
// variable is unset, and to "(undefined)" when neither is available.
func GitCommit() string {
	if c := strings.TrimSpace(gitCommit); c != "" {
		return c
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return defaultUndefined
}

// Returns the target platform as "<os>/<arch>".
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Reports whether the binary was built without the pipeline's linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(gitCommit) == "" ||
		strings.TrimSpace(stage) == ""
}

// Returns "<version>[+<stage>] <commit> [<os>/<arch>]", or "(local)" for
// local builds. The stage is left out for builds of the main branch.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	suffix := ""
	if s := Stage(); s != mainBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), suffix, GitCommit(), Platform())
}
