package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/scraperctl/internal/app/dispatch"
	"github.com/slok/scraperctl/internal/config"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/log"
	"github.com/slok/scraperctl/internal/printer"
	"github.com/slok/scraperctl/internal/registry"
	"github.com/slok/scraperctl/internal/remote"
	"github.com/slok/scraperctl/internal/selection"
	"github.com/slok/scraperctl/internal/storage"
	"github.com/slok/scraperctl/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	ServerURL  string
	DBPath     string
	ConfigPath string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	app.Flag("server-url", "Base URL of the scraping worker.").Envar("SCRAPERCTL_SERVER_URL").StringVar(&c.ServerURL)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".scraperctl", "scraperctl.db")
	app.Flag("db-path", "Path to the SQLite database file.").Envar("SCRAPERCTL_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	defaultConfigPath := filepath.Join(homedir.HomeDir(), ".scraperctl", "scraperctl.yml")
	app.Flag("config", "Path to the configuration file.").Envar("SCRAPERCTL_CONFIG").Default(defaultConfigPath).StringVar(&c.ConfigPath)

	return c
}

// LoadConfig loads the optional configuration file and resolves the worker
// base URL. The --server-url flag wins over the file.
func (c *RootCommand) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	if c.ServerURL != "" {
		cfg.ServerURL = c.ServerURL
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:5000"
	}

	return cfg, nil
}

// newRemoteClient creates the HTTP client against the worker API.
func newRemoteClient(cfg *config.Config, logger log.Logger) (remote.Client, error) {
	cli, err := remote.NewHTTPClient(remote.HTTPClientConfig{
		BaseURL: cfg.ServerURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create remote client: %w", err)
	}
	return cli, nil
}

// newRepository creates the local SQLite persistence.
func newRepository(ctx context.Context, rootCmd *RootCommand, logger log.Logger) (storage.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

// newDispatchService wires a full dispatch service: remote client, local
// persistence, restored selection, registry and event log.
func newDispatchService(ctx context.Context, rootCmd *RootCommand, cfg *config.Config) (*dispatch.Service, error) {
	logger := rootCmd.Logger

	cli, err := newRemoteClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo, err := newRepository(ctx, rootCmd, logger)
	if err != nil {
		return nil, err
	}

	sel, err := selection.NewSet(ctx, selection.SetConfig{Store: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not restore selection: %w", err)
	}

	reg, err := registry.NewRegistry(registry.RegistryConfig{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create registry: %w", err)
	}

	events, err := eventlog.NewLog(eventlog.LogConfig{Recorder: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create event log: %w", err)
	}

	svc, err := dispatch.NewService(dispatch.ServiceConfig{
		Client:    cli,
		Registry:  reg,
		Selection: sel,
		Events:    events,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, nil
}

// newPrinter selects the output printer for a format flag.
func newPrinter(format string, w io.Writer) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(w)
	default: // table
		return printer.NewTablePrinter(w)
	}
}
