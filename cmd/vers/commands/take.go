package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/app/takelist"
)

type TakeAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	name   string
	format string
}

// NewTakeAddCommand returns the take add command.
func NewTakeAddCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TakeAddCommand {
	c := &TakeAddCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("add", "Add a take to a task's take list (normalized and deduplicated).")
	c.Cmd.Flag("task", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")
	c.Cmd.Arg("name", "Raw take name, normalized before insertion.").Required().StringVar(&c.name)

	return c
}

func (c TakeAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c TakeAddCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	defaults, err := loadDefaults(ctx, c.rootCmd)
	if err != nil {
		return fmt.Errorf("could not load pipeline defaults: %w", err)
	}

	browser, err := newBrowser(ctx, c.rootCmd, repo, defaults.PublishedOnly, defaults.VersionCount, defaults.TakeName)
	if err != nil {
		return err
	}

	if err := browser.SelectTask(ctx, c.taskID); err != nil {
		return err
	}
	if browser.Selection().TaskID == "" {
		return fmt.Errorf("task %s is not in the task tree", c.taskID)
	}

	name, inserted, err := browser.AddTake(ctx, c.name)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("take name %q normalizes to empty", c.name)
	}
	if !inserted {
		c.rootCmd.Logger.Infof("Take %q already in the list, selected it", name)
	}

	if err := newPrinter(c.rootCmd, c.format).PrintTakeList(browser.Takes(), name); err != nil {
		return fmt.Errorf("could not print takes: %w", err)
	}

	return nil
}

type TakeListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewTakeListCommand returns the take list command.
func NewTakeListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TakeListCommand {
	c := &TakeListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List the takes of a task.")
	c.Cmd.Flag("task", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TakeListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TakeListCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	defaults, err := loadDefaults(ctx, c.rootCmd)
	if err != nil {
		return fmt.Errorf("could not load pipeline defaults: %w", err)
	}

	svc, err := takelist.NewService(takelist.ServiceConfig{
		Repository:      repo,
		DefaultTakeName: defaults.TakeName,
		Logger:          c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	takes, err := svc.Run(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("could not list takes: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format).PrintTakeList(takes, ""); err != nil {
		return fmt.Errorf("could not print takes: %w", err)
	}

	return nil
}
