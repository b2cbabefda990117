// Parses flags and runs the purple-ghost commands.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-c, --config    Configuration file path.
//	-s, --socket    Control socket path.
//
// Commands:
//
//	start     Run the logging daemon (default when no command is given).
//	status    Show the state of a running daemon.
//	reload    Ask a running daemon to reload its configuration.
//	version   Show version information.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is rebuilt to reflect the final level and verbosity before
// the command runs.
package cli
