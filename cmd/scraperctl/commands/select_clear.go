package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/printer"
)

type SelectClearCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewSelectClearCommand returns the select clear command.
func NewSelectClearCommand(rootCmd *RootCommand, selectCmd *SelectCommand) *SelectClearCommand {
	c := &SelectClearCommand{rootCmd: rootCmd}

	c.Cmd = selectCmd.Cmd.Command("clear", "Clear the pending selection.")

	return c
}

func (c SelectClearCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelectClearCommand) Run(ctx context.Context) error {
	sel, _, err := restoreSelection(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	n := sel.Len()
	sel.Clear()

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("cleared %d selected articles", n)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
