package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/purpleghost/purple-ghost/internal/protocol"
	"github.com/purpleghost/purple-ghost/internal/server"
)

// Represents the 'purple-ghost reload' command.
type ReloadCmd struct{}

// Executes the reload command.
//
// Returns once the daemon has applied the new configuration, or with the
// reason it was rejected.
func (c *ReloadCmd) Run(ctx context.Context) error {
	payload, err := server.Call(ctx, socketPath(), protocol.CmdReload)
	if err != nil {
		return err
	}

	result, err := protocol.DecodePayload[protocol.ReloadResult](payload)
	if err != nil {
		return err
	}

	printReload(os.Stdout, result)
	return nil
}

func printReload(w io.Writer, result *protocol.ReloadResult) {
	fmt.Fprintf(w, "reloaded, logging %d channel(s)\n", len(result.Channels))
	if len(result.Added) > 0 {
		fmt.Fprintf(w, "joined: %s\n", strings.Join(result.Added, ", "))
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(w, "left:   %s\n", strings.Join(result.Removed, ", "))
	}
}
