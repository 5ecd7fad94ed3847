package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/dispatch"
	"github.com/slok/scraperctl/internal/printer"
)

// CrawlCommand is the parent command for crawl subcommands.
type CrawlCommand struct {
	Cmd *kingpin.CmdClause
}

// NewCrawlCommand returns the crawl parent command.
func NewCrawlCommand(app *kingpin.Application) *CrawlCommand {
	c := &CrawlCommand{}

	c.Cmd = app.Command("crawl", "Dispatch journal crawls.")

	return c
}

type CrawlStartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	journalFile string
	startYear   int
	endYear     int
}

// NewCrawlStartCommand returns the crawl start command.
func NewCrawlStartCommand(rootCmd *RootCommand, crawlCmd *CrawlCommand) *CrawlStartCommand {
	c := &CrawlStartCommand{rootCmd: rootCmd}

	c.Cmd = crawlCmd.Cmd.Command("start", "Start a journal crawl task on the worker.")
	c.Cmd.Arg("journal-file", "Journal definition file on the worker.").Required().StringVar(&c.journalFile)
	c.Cmd.Flag("start-year", "First publication year to crawl.").Required().IntVar(&c.startYear)
	c.Cmd.Flag("end-year", "Last publication year to crawl.").Required().IntVar(&c.endYear)

	return c
}

func (c CrawlStartCommand) Name() string { return c.Cmd.FullCommand() }

func (c CrawlStartCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	svc, err := newDispatchService(ctx, c.rootCmd, cfg)
	if err != nil {
		return err
	}

	// Execute crawl start.
	ref, err := svc.StartJournalCrawl(ctx, dispatch.JournalCrawlRequest{
		JournalFile: c.journalFile,
		StartYear:   c.startYear,
		EndYear:     c.endYear,
	})
	if err != nil {
		return fmt.Errorf("could not start crawl: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Started journal crawl task: %s", ref.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
