package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/model"
)

type RestoreCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	published bool
	limit     int
	format    string
}

// NewRestoreCommand returns the restore command.
func NewRestoreCommand(rootCmd *RootCommand, app *kingpin.Application) *RestoreCommand {
	c := &RestoreCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("restore", "Restore the browser selection from a version reference.")
	c.Cmd.Flag("published", "List only published versions.").BoolVar(&c.published)
	c.Cmd.Flag("limit", "Cap on listed versions (0 uses the pipeline default).").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")
	c.Cmd.Arg("version", "ID of the reference version, e.g. the last one open in the host application.").Required().StringVar(&c.versionID)

	return c
}

func (c RestoreCommand) Name() string { return c.Cmd.FullCommand() }

func (c RestoreCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	defaults, err := loadDefaults(ctx, c.rootCmd)
	if err != nil {
		return fmt.Errorf("could not load pipeline defaults: %w", err)
	}

	limit := c.limit
	if limit <= 0 {
		limit = defaults.VersionCount
	}

	browser, err := newBrowser(ctx, c.rootCmd, repo, c.published || defaults.PublishedOnly, limit, defaults.TakeName)
	if err != nil {
		return err
	}

	// A reference that no longer exists degrades to no restoration, same as
	// a stale one.
	ref, err := repo.GetVersion(ctx, c.versionID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("could not get reference version: %w", err)
	}

	selection, err := browser.Restore(ctx, ref)
	if err != nil {
		return fmt.Errorf("could not restore selection: %w", err)
	}

	if selection.TaskID == "" {
		if err := newPrinter(c.rootCmd, c.format).PrintMessage("Nothing restored, the reference is stale"); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
		return nil
	}

	task, err := repo.GetTask(ctx, selection.TaskID)
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}
	project, err := repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	p := newPrinter(c.rootCmd, c.format)
	if err := p.PrintTakeList(browser.Takes(), selection.TakeName); err != nil {
		return fmt.Errorf("could not print takes: %w", err)
	}
	if err := p.PrintVersionList(*project, browser.Versions()); err != nil {
		return fmt.Errorf("could not print versions: %w", err)
	}

	if v := browser.SelectedVersion(); v != nil {
		if err := p.PrintMessage(fmt.Sprintf("Selected v%03d (%s)", v.VersionNumber, v.ID)); err != nil {
			return fmt.Errorf("could not print message: %w", err)
		}
	}

	return nil
}
