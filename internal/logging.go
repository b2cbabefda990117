package internal

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// Level shared by every logger built with [NewLogger], so that flag parsing
// can adjust verbosity after the default logger is installed.
var logLevel = new(slog.LevelVar)

// Sets the level of all loggers created by [NewLogger].
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// Creates a logger writing to w.
//
// Terminals get the text handler, anything else (container runtimes,
// journald, files) gets one JSON object per line. Verbose mode adds the
// source location of each record.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(newHandler(w, isTerminal(w)))
}

func newHandler(w io.Writer, text bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       logLevel,
		AddSource:   IsVerbose(),
		ReplaceAttr: errorMessage,
	}

	if text {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Renders error values by their message. The text handler would otherwise
// print them with %+v, which includes stack traces.
func errorMessage(_ []string, a slog.Attr) slog.Attr {
	if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny {
		return slog.String(a.Key, err.Error())
	}
	return a
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
