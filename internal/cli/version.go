package cli

import (
	"context"
	"fmt"

	"github.com/purpleghost/purple-ghost/internal"
)

// Represents the 'purple-ghost version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
