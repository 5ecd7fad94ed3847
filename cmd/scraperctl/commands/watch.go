package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/scraperctl/internal/console"
	"github.com/slok/scraperctl/internal/cursor"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/printer"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
	"github.com/slok/scraperctl/internal/selection"
	scrapersync "github.com/slok/scraperctl/internal/sync"
)

type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	interval time.Duration
	noFeed   bool
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Follow worker tasks live.")
	c.Cmd.Flag("interval", "Poll interval.").DurationVar(&c.interval)
	c.Cmd.Flag("no-feed", "Disable the push event feed, poll only.").BoolVar(&c.noFeed)

	return c
}

func (c WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c WatchCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	interval := c.interval
	if interval == 0 {
		interval = cfg.PollInterval
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd, logger)
	if err != nil {
		return err
	}

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create registry: %w", err)
	}

	sel, err := selection.NewSet(ctx, selection.SetConfig{Store: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not restore selection: %w", err)
	}

	cur, err := cursor.NewCursor(cursor.CursorConfig{
		Client:  cli,
		PerPage: cfg.PerPage,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create article cursor: %w", err)
	}

	events, err := eventlog.NewLog(eventlog.LogConfig{Recorder: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create event log: %w", err)
	}

	cons, err := console.NewConsole(reg, sel, cur, events)
	if err != nil {
		return fmt.Errorf("could not create console: %w", err)
	}

	// Coalesce update bursts into a single repaint.
	updates := make(chan struct{}, 1)
	onUpdate := func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	scheduler, err := scrapersync.NewScheduler(scrapersync.SchedulerConfig{
		Client:    cli,
		Registry:  reg,
		Events:    events,
		Snapshots: repo,
		OnUpdate:  onUpdate,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create scheduler: %w", err)
	}

	var g run.Group

	// Scheduler loop.
	{
		ctx, cancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				err := scheduler.Start(interval, "watch")
				if err != nil {
					cancel()
					return fmt.Errorf("could not start polling: %w", err)
				}
				defer scheduler.Stop("watch")
				return scheduler.Run(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Push event feed.
	if !c.noFeed {
		feed, err := remote.NewSSEFeed(remote.SSEFeedConfig{
			BaseURL: cfg.ServerURL,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("could not create event feed: %w", err)
		}

		ctx, cancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				return feed.Run(ctx, scheduler.HandlePush)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// Render loop.
	{
		ctx, cancel := context.WithCancel(ctx)
		p := printer.NewTablePrinter(c.rootCmd.Stdout)

		g.Add(
			func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-updates:
					}

					fmt.Fprint(c.rootCmd.Stdout, "\033[2J\033[H")
					if err := p.PrintView(cons.Project()); err != nil {
						return fmt.Errorf("could not render view: %w", err)
					}
				}
			},
			func(_ error) {
				cancel()
			},
		)
	}

	logger.Infof("Watching worker at %s every %s", cfg.ServerURL, interval)
	return g.Run()
}
