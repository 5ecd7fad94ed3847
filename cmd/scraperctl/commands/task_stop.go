package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/model"
)

type TaskStopCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewTaskStopCommand returns the task stop command.
func NewTaskStopCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskStopCommand {
	c := &TaskStopCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Cmd.Command("stop", "Stop a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c TaskStopCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskStopCommand) Run(ctx context.Context) error {
	return runTaskControl(ctx, c.rootCmd, c.taskID, model.TaskControlStop)
}
