package ghost

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/purpleghost/purple-ghost/internal/chatlog"
	"github.com/purpleghost/purple-ghost/internal/irc"
)

// Logs one inbound message.
func (g *Ghost) handle(msg irc.Message) {
	channel, rec, err := recordFor(msg)
	switch {
	case errors.Is(err, errUnhandled):
		printMessage(msg)
		return
	case err != nil:
		slog.Error("cannot log message", "command", msg.Command, "error", err)
		return
	}

	g.write(channel, rec)
}

// Appends rec to the channel's log and counts it.
//
// Records for channels without an open log file are dropped with a warning.
func (g *Ghost) write(channel string, rec chatlog.Record) {
	g.mu.Lock()
	logs := g.logs
	g.mu.Unlock()

	if err := logs.Write(channel, rec); err != nil {
		if errors.Is(err, chatlog.ErrNoLogFile) {
			slog.Warn("no log file opened, dropping record", "channel", channel, "record", rec)
			return
		}
		slog.Error("failed to write log", "channel", channel, "error", err)
		return
	}

	if err := g.stats.Record(channel, rec.Command, time.Now()); err != nil {
		slog.Warn("failed to update stats", "channel", channel, "error", err)
	}
}

// Reports traffic that is not logged per channel. Visible with --debug.
func printMessage(msg irc.Message) {
	slog.Log(context.Background(), slog.LevelDebug, "irc message",
		"command", msg.Command,
		"source", msg.Source,
		"params", msg.Params,
		"tags", irc.Tags(msg),
	)
}
