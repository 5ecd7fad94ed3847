package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/cursor"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/printer"
)

type SelectAllCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	page           int
	text           string
	keyword        string
	literatureType string
}

// NewSelectAllCommand returns the select all command.
func NewSelectAllCommand(rootCmd *RootCommand, selectCmd *SelectCommand) *SelectAllCommand {
	c := &SelectAllCommand{rootCmd: rootCmd}

	c.Cmd = selectCmd.Cmd.Command("all", "Add all articles of one page to the selection.")
	c.Cmd.Flag("page", "Page to select.").Default("1").IntVar(&c.page)
	c.Cmd.Flag("search", "Free text filter.").StringVar(&c.text)
	c.Cmd.Flag("keyword", "Keyword filter.").StringVar(&c.keyword)
	c.Cmd.Flag("literature-type", "Literature type filter.").StringVar(&c.literatureType)

	return c
}

func (c SelectAllCommand) Name() string { return c.Cmd.FullCommand() }

func (c SelectAllCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	sel, _, err := restoreSelection(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	cur, err := cursor.NewCursor(cursor.CursorConfig{
		Client:  cli,
		PerPage: cfg.PerPage,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create article cursor: %w", err)
	}

	err = cur.Load(ctx, c.page, model.ArticleFilters{
		Text:           c.text,
		Keyword:        c.keyword,
		LiteratureType: c.literatureType,
	})
	if err != nil {
		return fmt.Errorf("could not load articles: %w", err)
	}

	sel.SelectAll(cur.VisibleIDs())

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("%d articles selected", sel.Len())); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
