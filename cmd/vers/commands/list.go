package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/app/versionlist"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID    string
	takeName  string
	published bool
	limit     int
	format    string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List the versions of a task and take, oldest first.")
	c.Cmd.Flag("task", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("take", "Take name (defaults to the pipeline default take).").StringVar(&c.takeName)
	c.Cmd.Flag("published", "List only published versions.").BoolVar(&c.published)
	c.Cmd.Flag("limit", "Cap on listed versions, newest kept (0 uses the pipeline default).").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	defaults, err := loadDefaults(ctx, c.rootCmd)
	if err != nil {
		return fmt.Errorf("could not load pipeline defaults: %w", err)
	}

	takeName := c.takeName
	if takeName == "" {
		takeName = defaults.TakeName
	}
	limit := c.limit
	if limit <= 0 {
		limit = defaults.VersionCount
	}

	task, err := repo.GetTask(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}
	project, err := repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	svc, err := versionlist.NewService(versionlist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	versions, err := svc.Run(ctx, versionlist.Request{
		TaskID:        c.taskID,
		TakeName:      takeName,
		PublishedOnly: c.published || defaults.PublishedOnly,
		Limit:         limit,
	})
	if err != nil {
		return fmt.Errorf("could not list versions: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format).PrintVersionList(*project, versions); err != nil {
		return fmt.Errorf("could not print versions: %w", err)
	}

	return nil
}
