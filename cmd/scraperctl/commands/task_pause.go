package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/model"
)

type TaskPauseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewTaskPauseCommand returns the task pause command.
func NewTaskPauseCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskPauseCommand {
	c := &TaskPauseCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Cmd.Command("pause", "Pause a running task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c TaskPauseCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskPauseCommand) Run(ctx context.Context) error {
	return runTaskControl(ctx, c.rootCmd, c.taskID, model.TaskControlPause)
}
