package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/scraperctl/cmd/scraperctl/commands"
	"github.com/slok/scraperctl/internal/log"
	loglogrus "github.com/slok/scraperctl/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("scraperctl", "Operator console for remote scraping workers.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	watchCmd := commands.NewWatchCommand(rootCmd, app)
	eventsCmd := commands.NewEventsCommand(rootCmd, app)

	// Task subcommands share parent commands: tasks for inspection, task
	// for control.
	tasksCmd := commands.NewTasksCommand(app)
	tasksListCmd := commands.NewTasksListCommand(rootCmd, tasksCmd)
	tasksGetCmd := commands.NewTasksGetCommand(rootCmd, tasksCmd)

	taskCmd := commands.NewTaskCommand(app)
	taskPauseCmd := commands.NewTaskPauseCommand(rootCmd, taskCmd)
	taskResumeCmd := commands.NewTaskResumeCommand(rootCmd, taskCmd)
	taskStopCmd := commands.NewTaskStopCommand(rootCmd, taskCmd)

	articlesCmd := commands.NewArticlesCommand(app)
	articlesListCmd := commands.NewArticlesListCommand(rootCmd, articlesCmd)

	selectCmd := commands.NewSelectCommand(app)
	selectToggleCmd := commands.NewSelectToggleCommand(rootCmd, selectCmd)
	selectAllCmd := commands.NewSelectAllCommand(rootCmd, selectCmd)
	selectClearCmd := commands.NewSelectClearCommand(rootCmd, selectCmd)
	selectShowCmd := commands.NewSelectShowCommand(rootCmd, selectCmd)

	downloadCmd := commands.NewDownloadCommand(app)
	downloadSubmitCmd := commands.NewDownloadSubmitCommand(rootCmd, downloadCmd)

	searchCmd := commands.NewSearchCommand(app)
	searchStartCmd := commands.NewSearchStartCommand(rootCmd, searchCmd)

	crawlCmd := commands.NewCrawlCommand(app)
	crawlStartCmd := commands.NewCrawlStartCommand(rootCmd, crawlCmd)

	filesCmd := commands.NewFilesCommand(app)
	filesListCmd := commands.NewFilesListCommand(rootCmd, filesCmd)

	cmds := map[string]commands.Command{
		watchCmd.Name():          watchCmd,
		eventsCmd.Name():         eventsCmd,
		tasksListCmd.Name():      tasksListCmd,
		tasksGetCmd.Name():       tasksGetCmd,
		taskPauseCmd.Name():      taskPauseCmd,
		taskResumeCmd.Name():     taskResumeCmd,
		taskStopCmd.Name():       taskStopCmd,
		articlesListCmd.Name():   articlesListCmd,
		selectToggleCmd.Name():   selectToggleCmd,
		selectAllCmd.Name():      selectAllCmd,
		selectClearCmd.Name():    selectClearCmd,
		selectShowCmd.Name():     selectShowCmd,
		downloadSubmitCmd.Name(): downloadSubmitCmd,
		searchStartCmd.Name():    searchStartCmd,
		crawlStartCmd.Name():     crawlStartCmd,
		filesListCmd.Name():      filesListCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that produce structured output (table/JSON)
	// to prevent log noise from mixing with printer output in the terminal.
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"tasks list":    true,
		"tasks get":     true,
		"articles list": true,
		"select show":   true,
		"files list":    true,
		"events":        true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
