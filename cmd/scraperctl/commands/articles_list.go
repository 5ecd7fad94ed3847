package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/console"
	"github.com/slok/scraperctl/internal/cursor"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/selection"
)

// ArticlesCommand is the parent command for article subcommands.
type ArticlesCommand struct {
	Cmd *kingpin.CmdClause
}

// NewArticlesCommand returns the articles parent command.
func NewArticlesCommand(app *kingpin.Application) *ArticlesCommand {
	c := &ArticlesCommand{}

	c.Cmd = app.Command("articles", "Browse discovered articles.")

	return c
}

type ArticlesListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	page           int
	perPage        int
	text           string
	keyword        string
	literatureType string
	format         string
}

// NewArticlesListCommand returns the articles list command.
func NewArticlesListCommand(rootCmd *RootCommand, articlesCmd *ArticlesCommand) *ArticlesListCommand {
	c := &ArticlesListCommand{rootCmd: rootCmd}

	c.Cmd = articlesCmd.Cmd.Command("list", "List one page of discovered articles.")
	c.Cmd.Flag("page", "Page to load.").Default("1").IntVar(&c.page)
	c.Cmd.Flag("per-page", "Page size.").IntVar(&c.perPage)
	c.Cmd.Flag("search", "Free text filter.").StringVar(&c.text)
	c.Cmd.Flag("keyword", "Keyword filter.").StringVar(&c.keyword)
	c.Cmd.Flag("literature-type", "Literature type filter.").StringVar(&c.literatureType)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ArticlesListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ArticlesListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd, logger)
	if err != nil {
		return err
	}

	perPage := c.perPage
	if perPage == 0 {
		perPage = cfg.PerPage
	}

	cur, err := cursor.NewCursor(cursor.CursorConfig{
		Client:  cli,
		PerPage: perPage,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create article cursor: %w", err)
	}

	// Selection marks come from the persisted selection set.
	sel, err := selection.NewSet(ctx, selection.SetConfig{Store: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not restore selection: %w", err)
	}

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create registry: %w", err)
	}

	events, err := eventlog.NewLog(eventlog.LogConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create event log: %w", err)
	}

	err = cur.Load(ctx, c.page, model.ArticleFilters{
		Text:           c.text,
		Keyword:        c.keyword,
		LiteratureType: c.literatureType,
	})
	if err != nil {
		return fmt.Errorf("could not load articles: %w", err)
	}

	cons, err := console.NewConsole(reg, sel, cur, events)
	if err != nil {
		return fmt.Errorf("could not create console: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintArticles(cons.Project()); err != nil {
		return fmt.Errorf("could not print articles: %w", err)
	}

	return nil
}
