package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/taskctl"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
	"github.com/slok/scraperctl/internal/printer"
	"github.com/slok/scraperctl/internal/registry"
)

// TaskCommand is the parent command for task control subcommands.
type TaskCommand struct {
	Cmd *kingpin.CmdClause
}

// NewTaskCommand returns the task parent command.
func NewTaskCommand(app *kingpin.Application) *TaskCommand {
	c := &TaskCommand{}

	c.Cmd = app.Command("task", "Control a worker task.")

	return c
}

// runTaskControl executes a control action against a task. The current
// worker state is polled first so the action is validated against fresh
// status before being sent.
func runTaskControl(ctx context.Context, rootCmd *RootCommand, taskID string, action model.TaskControlAction) error {
	logger := rootCmd.Logger

	cfg, err := rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, rootCmd, logger)
	if err != nil {
		return err
	}

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create registry: %w", err)
	}

	tasks, err := cli.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}
	reg.Ingest(tasks)

	events, err := eventlog.NewLog(eventlog.LogConfig{Recorder: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create event log: %w", err)
	}

	// Create control service.
	svc, err := taskctl.NewService(taskctl.ServiceConfig{
		Client:   cli,
		Registry: reg,
		Events:   events,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute control action.
	err = svc.Run(ctx, taskctl.Request{TaskID: taskID, Action: action})
	if err != nil {
		return fmt.Errorf("could not %s task: %w", action, err)
	}

	// Print success message.
	p := printer.NewTablePrinter(rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Requested %s of task: %s", action, taskID)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
