package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/selection"
	"github.com/slok/scraperctl/internal/storage"
)

// SelectCommand is the parent command for selection subcommands.
type SelectCommand struct {
	Cmd *kingpin.CmdClause
}

// NewSelectCommand returns the select parent command.
func NewSelectCommand(app *kingpin.Application) *SelectCommand {
	c := &SelectCommand{}

	c.Cmd = app.Command("select", "Manage the pending article selection.")

	return c
}

// restoreSelection loads the persisted selection set.
func restoreSelection(ctx context.Context, rootCmd *RootCommand) (*selection.Set, storage.Repository, error) {
	logger := rootCmd.Logger

	repo, err := newRepository(ctx, rootCmd, logger)
	if err != nil {
		return nil, nil, err
	}

	sel, err := selection.NewSet(ctx, selection.SetConfig{Store: repo, Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("could not restore selection: %w", err)
	}

	return sel, repo, nil
}
