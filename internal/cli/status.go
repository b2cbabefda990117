package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/purpleghost/purple-ghost/internal/protocol"
	"github.com/purpleghost/purple-ghost/internal/server"
)

// Represents the 'purple-ghost status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	payload, err := server.Call(ctx, socketPath(), protocol.CmdStatus)
	if err != nil {
		return err
	}

	status, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		return err
	}

	return printStatus(os.Stdout, status)
}

// Writes a human-readable summary of status to w.
func printStatus(w io.Writer, status *protocol.StatusResult) error {
	connection := "disconnected"
	if status.Connected {
		connection = "connected"
	}

	fmt.Fprintf(w, "version:  %s\n", status.Version)
	fmt.Fprintf(w, "pid:      %d\n", status.Pid)
	fmt.Fprintf(w, "uptime:   %s\n", status.Uptime)
	fmt.Fprintf(w, "irc:      %s\n", connection)
	fmt.Fprintf(w, "reloads:  %d\n", status.Reloads)
	fmt.Fprintf(w, "requests: %d\n\n", status.Requests)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tLINES\tLAST EVENT\tLAST COMMAND\tLOG FILE")
	for _, ch := range status.Channels {
		last, command := "never", "-"
		if !ch.LastEvent.IsZero() {
			last = humanize.Time(ch.LastEvent)
			command = ch.LastCommand
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ch.Name, humanize.Comma(int64(ch.Lines)), last, command, ch.LogFile)
	}
	return tw.Flush()
}
