package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/printer"
)

type SelectToggleCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	articleIDs []string
}

// NewSelectToggleCommand returns the select toggle command.
func NewSelectToggleCommand(rootCmd *RootCommand, selectCmd *SelectCommand) *SelectToggleCommand {
	c := &SelectToggleCommand{rootCmd: rootCmd}

	c.Cmd = selectCmd.Cmd.Command("toggle", "Toggle articles in or out of the selection.")
	c.Cmd.Arg("article-id", "Article IDs to toggle.").Required().StringsVar(&c.articleIDs)

	return c
}

func (c SelectToggleCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelectToggleCommand) Run(ctx context.Context) error {
	sel, _, err := restoreSelection(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	for _, id := range c.articleIDs {
		state := "deselected"
		if sel.Toggle(id) {
			state = "selected"
		}
		if err := p.PrintMessage(fmt.Sprintf("%s: %s", state, id)); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
	}

	return nil
}
