package commands

import (
	"github.com/alecthomas/kingpin/v2"
)

// TasksCommand is the parent command for task listing subcommands.
type TasksCommand struct {
	Cmd *kingpin.CmdClause
}

// NewTasksCommand returns the tasks parent command.
func NewTasksCommand(app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{}

	c.Cmd = app.Command("tasks", "Inspect worker tasks.")

	return c
}
