package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraperctl/internal/model"
)

type TaskResumeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewTaskResumeCommand returns the task resume command.
func NewTaskResumeCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskResumeCommand {
	c := &TaskResumeCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Cmd.Command("resume", "Resume a paused task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c TaskResumeCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskResumeCommand) Run(ctx context.Context) error {
	return runTaskControl(ctx, c.rootCmd, c.taskID, model.TaskControlResume)
}
