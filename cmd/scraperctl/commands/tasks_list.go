package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/listtasks"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/registry"
)

type TasksListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	cached       bool
	format       string
}

// NewTasksListCommand returns the tasks list command.
func NewTasksListCommand(rootCmd *RootCommand, tasksCmd *TasksCommand) *TasksListCommand {
	c := &TasksListCommand{rootCmd: rootCmd}

	c.Cmd = tasksCmd.Cmd.Command("list", "List worker tasks.")
	c.Cmd.Flag("status", "Filter by status (pending, running, paused, completed, failed).").StringVar(&c.statusFilter)
	c.Cmd.Flag("cached", "List the locally cached snapshot instead of asking the worker.").BoolVar(&c.cached)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TasksListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Parse status filter if provided.
	var statusFilter *model.TaskStatus
	if c.statusFilter != "" {
		status := model.TaskStatus(strings.ToLower(c.statusFilter))
		// Validate status value.
		switch status {
		case model.TaskStatusPending, model.TaskStatusRunning, model.TaskStatusPaused, model.TaskStatusCompleted, model.TaskStatusFailed:
			statusFilter = &status
		default:
			return fmt.Errorf("invalid status filter: %s (must be: pending, running, paused, completed, failed)", c.statusFilter)
		}
	}

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

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create registry: %w", err)
	}

	// Create list service.
	svc, err := listtasks.NewService(listtasks.ServiceConfig{
		Client:     cli,
		Registry:   reg,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute list.
	tasks, err := svc.Run(ctx, listtasks.Request{
		StatusFilter: statusFilter,
		Cached:       c.cached,
	})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintTaskList(tasks); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
