package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type EventsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewEventsCommand returns the events command.
func NewEventsCommand(rootCmd *RootCommand, app *kingpin.Application) *EventsCommand {
	c := &EventsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("events", "Show the operator event history.")
	c.Cmd.Flag("limit", "Maximum events to show, 0 for all.").Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c EventsCommand) Name() string { return c.Cmd.FullCommand() }

func (c EventsCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := newRepository(ctx, c.rootCmd, logger)
	if err != nil {
		return err
	}

	entries, err := repo.ListEvents(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("could not list events: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintEvents(entries); err != nil {
		return fmt.Errorf("could not print events: %w", err)
	}

	return nil
}
