package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type SelectShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewSelectShowCommand returns the select show command.
func NewSelectShowCommand(rootCmd *RootCommand, selectCmd *SelectCommand) *SelectShowCommand {
	c := &SelectShowCommand{rootCmd: rootCmd}

	c.Cmd = selectCmd.Cmd.Command("show", "Show the pending selection.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c SelectShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelectShowCommand) Run(ctx context.Context) error {
	sel, _, err := restoreSelection(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintSelection(sel.IDs()); err != nil {
		return fmt.Errorf("could not print selection: %w", err)
	}

	return nil
}
