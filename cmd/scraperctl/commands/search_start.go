package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/dispatch"
	"github.com/slok/scraperctl/internal/printer"
)

// SearchCommand is the parent command for search subcommands.
type SearchCommand struct {
	Cmd *kingpin.CmdClause
}

// NewSearchCommand returns the search parent command.
func NewSearchCommand(app *kingpin.Application) *SearchCommand {
	c := &SearchCommand{}

	c.Cmd = app.Command("search", "Dispatch keyword searches.")

	return c
}

type SearchStartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	keywords       []string
	resultCount    int
	literatureType string
}

// NewSearchStartCommand returns the search start command.
func NewSearchStartCommand(rootCmd *RootCommand, searchCmd *SearchCommand) *SearchStartCommand {
	c := &SearchStartCommand{rootCmd: rootCmd}

	c.Cmd = searchCmd.Cmd.Command("start", "Start a keyword search task on the worker.")
	c.Cmd.Arg("keyword", "Keywords to search for.").StringsVar(&c.keywords)
	c.Cmd.Flag("results", "Results to collect per keyword.").Default("50").IntVar(&c.resultCount)
	c.Cmd.Flag("literature-type", "Literature type to search.").StringVar(&c.literatureType)

	return c
}

func (c SearchStartCommand) Name() string { return c.Cmd.FullCommand() }

func (c SearchStartCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	// Keywords fall back to the configured default set.
	keywords := c.keywords
	if len(keywords) == 0 {
		keywords = cfg.Keywords
	}

	literatureType := c.literatureType
	if literatureType == "" {
		literatureType = cfg.LiteratureType
	}

	svc, err := newDispatchService(ctx, c.rootCmd, cfg)
	if err != nil {
		return err
	}

	// Execute search start.
	ref, err := svc.StartKeywordSearch(ctx, dispatch.KeywordSearchRequest{
		Keywords:       keywords,
		ResultCount:    c.resultCount,
		LiteratureType: literatureType,
	})
	if err != nil {
		return fmt.Errorf("could not start search: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Started keyword search task: %s", ref.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
