package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/studiokit/vers/internal/app/takelist"
	"github.com/studiokit/vers/internal/app/versionlist"
	"github.com/studiokit/vers/internal/auth"
	"github.com/studiokit/vers/internal/browse"
	"github.com/studiokit/vers/internal/conventions"
	"github.com/studiokit/vers/internal/environment"
	envfake "github.com/studiokit/vers/internal/environment/fake"
	"github.com/studiokit/vers/internal/log"
	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/printer"
	"github.com/studiokit/vers/internal/storage"
	storageio "github.com/studiokit/vers/internal/storage/io"
	"github.com/studiokit/vers/internal/storage/sqlite"
	"github.com/studiokit/vers/internal/tree"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	// EnvironmentNone runs without a host application, only creating records
	// and paths.
	EnvironmentNone = "none"
	// EnvironmentFake runs against the fake host application that
	// materializes version files under the project repository root.
	EnvironmentFake = "fake"
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
	DBPath     string
	ConfigPath string
	UserLogin  string
	ReadOnly   bool

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

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("db-path", "Path to the SQLite database file.").Envar("VERS_DB_PATH").Default(conventions.DBPath(dataDir)).StringVar(&c.DBPath)
	app.Flag("config", "Path to the pipeline defaults file.").Envar("VERS_CONFIG").Default(conventions.DefaultsPath(dataDir)).StringVar(&c.ConfigPath)
	app.Flag("user", "Login of the current pipeline user.").Envar("VERS_USER").StringVar(&c.UserLogin)
	app.Flag("read-only", "Reject every mutating operation.").BoolVar(&c.ReadOnly)

	return c
}

// newRepository opens the shared SQLite repository.
func newRepository(ctx context.Context, rootCmd *RootCommand) (storage.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

// loadDefaults loads the pipeline defaults file, falling back to built-in
// defaults when it is missing.
func loadDefaults(ctx context.Context, rootCmd *RootCommand) (storageio.Defaults, error) {
	dir := filepath.Dir(rootCmd.ConfigPath)
	repo := storageio.NewDefaultsYAMLRepository(os.DirFS(dir))
	return repo.GetDefaults(ctx, filepath.Base(rootCmd.ConfigPath))
}

// newEnvironment builds the host application environment by name.
// EnvironmentNone returns nil (environment-less mode).
func newEnvironment(rootCmd *RootCommand, name string, project model.Project) (environment.Environment, error) {
	switch name {
	case EnvironmentNone, "":
		return nil, nil
	case EnvironmentFake:
		return envfake.NewEnvironment(envfake.EnvironmentConfig{
			Name:           EnvironmentFake,
			RepositoryRoot: project.RepositoryRoot,
			Logger:         rootCmd.Logger,
		})
	default:
		return nil, fmt.Errorf("unknown environment %q", name)
	}
}

// newBrowser assembles a browser over the repository with its tree, take and
// version listing collaborators, and loads the initial task tree.
func newBrowser(ctx context.Context, rootCmd *RootCommand, repo storage.Repository, publishedOnly bool, limit int, defaultTake string) (*browse.Browser, error) {
	builder, err := tree.NewBuilder(tree.BuilderConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create tree builder: %w", err)
	}

	lister, err := versionlist.NewService(versionlist.ServiceConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create version list service: %w", err)
	}

	takes, err := takelist.NewService(takelist.ServiceConfig{
		Repository:      repo,
		DefaultTakeName: defaultTake,
		Logger:          rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create take list service: %w", err)
	}

	browser, err := browse.NewBrowser(browse.BrowserConfig{
		Repository:    repo,
		TreeBuilder:   builder,
		VersionLister: lister,
		TakeLister:    takes,
		PublishedOnly: publishedOnly,
		Limit:         limit,
		Logger:        rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser: %w", err)
	}

	if err := browser.Reload(ctx, tree.BuildOptions{}); err != nil {
		return nil, err
	}

	return browser, nil
}

// currentUser resolves the current pipeline user from the --user flag.
func currentUser(ctx context.Context, rootCmd *RootCommand, repo storage.Repository) (*model.User, error) {
	provider, err := auth.NewStaticProvider(auth.StaticProviderConfig{
		Repository: repo,
		Login:      rootCmd.UserLogin,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create auth provider: %w", err)
	}

	return provider.CurrentUser(ctx)
}

// newPrinter selects the output printer by format name.
func newPrinter(rootCmd *RootCommand, format string) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(rootCmd.Stdout)
	default:
		return printer.NewTablePrinter(rootCmd.Stdout)
	}
}
