package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/listfiles"
	"github.com/slok/scraperctl/internal/model"
)

// FilesCommand is the parent command for worker file subcommands.
type FilesCommand struct {
	Cmd *kingpin.CmdClause
}

// NewFilesCommand returns the files parent command.
func NewFilesCommand(app *kingpin.Application) *FilesCommand {
	c := &FilesCommand{}

	c.Cmd = app.Command("files", "Browse worker resource files.")

	return c
}

type FilesListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	category string
	format   string
}

// NewFilesListCommand returns the files list command.
func NewFilesListCommand(rootCmd *RootCommand, filesCmd *FilesCommand) *FilesListCommand {
	c := &FilesListCommand{rootCmd: rootCmd}

	c.Cmd = filesCmd.Cmd.Command("list", "List the files of a worker resource directory.")
	c.Cmd.Arg("category", "Resource category (links, downloads, exports, logs).").Required().StringVar(&c.category)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c FilesListCommand) Name() string { return c.Cmd.FullCommand() }

func (c FilesListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	category, err := model.ParseFileCategory(c.category)
	if err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	// Create list service.
	svc, err := listfiles.NewService(listfiles.ServiceConfig{
		Client: cli,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute list.
	files, err := svc.Run(ctx, listfiles.Request{Category: category})
	if err != nil {
		return fmt.Errorf("could not list files: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintFileList(files); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
