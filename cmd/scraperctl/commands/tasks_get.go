package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/app/gettask"
	"github.com/slok/scraperctl/internal/registry"
)

type TasksGetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewTasksGetCommand returns the tasks get command.
func NewTasksGetCommand(rootCmd *RootCommand, tasksCmd *TasksCommand) *TasksGetCommand {
	c := &TasksGetCommand{rootCmd: rootCmd}

	c.Cmd = tasksCmd.Cmd.Command("get", "Get detailed status of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TasksGetCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksGetCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig()
	if err != nil {
		return err
	}

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return err
	}

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create registry: %w", err)
	}

	// Create get service.
	svc, err := gettask.NewService(gettask.ServiceConfig{
		Client:   cli,
		Registry: reg,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute get.
	task, err := svc.Run(ctx, gettask.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}

	// Print output.
	p := newPrinter(c.format, c.rootCmd.Stdout)
	if err := p.PrintTask(*task); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
