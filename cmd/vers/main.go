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

	"github.com/studiokit/vers/cmd/vers/commands"
	"github.com/studiokit/vers/internal/log"
	loglogrus "github.com/studiokit/vers/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("vers", "Production pipeline version management tool.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	listCmd := commands.NewListCommand(rootCmd, app)
	createCmd := commands.NewCreateCommand(rootCmd, app)
	openCmd := commands.NewOpenCommand(rootCmd, app)
	exportCmd := commands.NewExportCommand(rootCmd, app)
	importCmd := commands.NewImportCommand(rootCmd, app)
	referenceCmd := commands.NewReferenceCommand(rootCmd, app)
	publishCmd := commands.NewPublishCommand(rootCmd, app)
	unpublishCmd := commands.NewUnpublishCommand(rootCmd, app)
	statusCmd := commands.NewStatusCommand(rootCmd, app)
	noteCmd := commands.NewNoteCommand(rootCmd, app)
	restoreCmd := commands.NewRestoreCommand(rootCmd, app)

	// Project subcommands share a parent command.
	projectCmd := app.Command("project", "Manage projects.")
	projectCreateCmd := commands.NewProjectCreateCommand(rootCmd, projectCmd)
	projectListCmd := commands.NewProjectListCommand(rootCmd, projectCmd)

	// Task subcommands share a parent command.
	taskCmd := app.Command("task", "Manage tasks.")
	taskCreateCmd := commands.NewTaskCreateCommand(rootCmd, taskCmd)
	taskTreeCmd := commands.NewTaskTreeCommand(rootCmd, taskCmd)

	// User subcommands share a parent command.
	userCmd := app.Command("user", "Manage pipeline users.")
	userCreateCmd := commands.NewUserCreateCommand(rootCmd, userCmd)

	// Take subcommands share a parent command.
	takeCmd := app.Command("take", "Manage takes of a task.")
	takeAddCmd := commands.NewTakeAddCommand(rootCmd, takeCmd)
	takeListCmd := commands.NewTakeListCommand(rootCmd, takeCmd)

	cmds := map[string]commands.Command{
		listCmd.Name():          listCmd,
		createCmd.Name():        createCmd,
		openCmd.Name():          openCmd,
		exportCmd.Name():        exportCmd,
		importCmd.Name():        importCmd,
		referenceCmd.Name():     referenceCmd,
		publishCmd.Name():       publishCmd,
		unpublishCmd.Name():     unpublishCmd,
		statusCmd.Name():        statusCmd,
		noteCmd.Name():          noteCmd,
		restoreCmd.Name():       restoreCmd,
		projectCreateCmd.Name(): projectCreateCmd,
		projectListCmd.Name():   projectListCmd,
		taskCreateCmd.Name():    taskCreateCmd,
		taskTreeCmd.Name():      taskTreeCmd,
		userCreateCmd.Name():    userCreateCmd,
		takeAddCmd.Name():       takeAddCmd,
		takeListCmd.Name():      takeListCmd,
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
		"list":         true,
		"project list": true,
		"task tree":    true,
		"take list":    true,
		"take add":     true,
		"restore":      true,
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
