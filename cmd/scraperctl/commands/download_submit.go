package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/printer"
)

// DownloadCommand is the parent command for download subcommands.
type DownloadCommand struct {
	Cmd *kingpin.CmdClause
}

// NewDownloadCommand returns the download parent command.
func NewDownloadCommand(app *kingpin.Application) *DownloadCommand {
	c := &DownloadCommand{}

	c.Cmd = app.Command("download", "Dispatch article downloads.")

	return c
}

type DownloadSubmitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	articleIDs []string
	maxWorkers int
}

// NewDownloadSubmitCommand returns the download submit command.
func NewDownloadSubmitCommand(rootCmd *RootCommand, downloadCmd *DownloadCommand) *DownloadSubmitCommand {
	c := &DownloadSubmitCommand{rootCmd: rootCmd}

	c.Cmd = downloadCmd.Cmd.Command("submit", "Submit a bulk download of the selected articles.")
	c.Cmd.Arg("article-id", "Explicit article IDs, instead of the pending selection.").StringsVar(&c.articleIDs)
	c.Cmd.Flag("max-workers", "Parallel download workers on the worker side.").IntVar(&c.maxWorkers)

	return c
}

func (c DownloadSubmitCommand) Name() string { return c.Cmd.FullCommand() }

func (c DownloadSubmitCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	svc, err := newDispatchService(ctx, c.rootCmd, cfg)
	if err != nil {
		return err
	}

	maxWorkers := c.maxWorkers
	if maxWorkers == 0 {
		maxWorkers = cfg.MaxWorkers
	}

	// Execute submit. Explicit ids win over the pending selection.
	var ref *model.TaskRef
	if len(c.articleIDs) != 0 {
		ref, err = svc.SubmitBulk(ctx, c.articleIDs, maxWorkers)
	} else {
		ref, err = svc.SubmitSelection(ctx, maxWorkers)
	}
	if err != nil {
		return fmt.Errorf("could not submit download: %w", err)
	}

	// Print success message.
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Submitted download task: %s", ref.ID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
