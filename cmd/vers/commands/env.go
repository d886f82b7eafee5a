package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/storage"
)

// envOpTarget resolves the version of an environment operation together with
// its owning project.
func envOpTarget(ctx context.Context, repo storage.Repository, versionID string) (*model.Version, *model.Project, error) {
	version, err := repo.GetVersion(ctx, versionID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get version: %w", err)
	}

	task, err := repo.GetTask(ctx, version.TaskID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get task: %w", err)
	}

	project, err := repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not get project: %w", err)
	}

	return version, project, nil
}

type OpenCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	env       string
}

// NewOpenCommand returns the open command.
func NewOpenCommand(rootCmd *RootCommand, app *kingpin.Application) *OpenCommand {
	c := &OpenCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("open", "Open a version in the host application.")
	c.Cmd.Flag("env", "Host application environment.").Default(EnvironmentFake).EnumVar(&c.env, EnvironmentFake)
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

func (c OpenCommand) Name() string { return c.Cmd.FullCommand() }

func (c OpenCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	version, project, err := envOpTarget(ctx, repo, c.versionID)
	if err != nil {
		return err
	}

	env, err := newEnvironment(c.rootCmd, c.env, *project)
	if err != nil {
		return err
	}

	result, err := env.Open(ctx, *version)
	if err != nil {
		return fmt.Errorf("could not open version: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Opened v%03d of %s/%s in %s\n",
		version.VersionNumber, version.TaskID, version.TakeName, env.Name())

	// Referenced versions with newer published versions available.
	for _, v := range result.ToUpdate {
		fmt.Fprintf(c.rootCmd.Stdout, "  Outdated reference: %s (v%03d)\n", v.ID, v.VersionNumber)
	}

	return nil
}

type ExportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	env       string
}

// NewExportCommand returns the export command.
func NewExportCommand(rootCmd *RootCommand, app *kingpin.Application) *ExportCommand {
	c := &ExportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("export", "Export the host application selection as a version file.")
	c.Cmd.Flag("env", "Host application environment.").Default(EnvironmentFake).EnumVar(&c.env, EnvironmentFake)
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

func (c ExportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExportCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	version, project, err := envOpTarget(ctx, repo, c.versionID)
	if err != nil {
		return err
	}

	env, err := newEnvironment(c.rootCmd, c.env, *project)
	if err != nil {
		return err
	}

	if err := env.Export(ctx, *version); err != nil {
		return fmt.Errorf("could not export version: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Exported v%03d of %s/%s\n", version.VersionNumber, version.TaskID, version.TakeName)

	return nil
}

type ImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	env       string
}

// NewImportCommand returns the import command.
func NewImportCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportCommand {
	c := &ImportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("import", "Import a version file into the host application scene.")
	c.Cmd.Flag("env", "Host application environment.").Default(EnvironmentFake).EnumVar(&c.env, EnvironmentFake)
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

func (c ImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	version, project, err := envOpTarget(ctx, repo, c.versionID)
	if err != nil {
		return err
	}

	env, err := newEnvironment(c.rootCmd, c.env, *project)
	if err != nil {
		return err
	}

	if err := env.Import(ctx, *version); err != nil {
		return fmt.Errorf("could not import version: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Imported v%03d of %s/%s\n", version.VersionNumber, version.TaskID, version.TakeName)

	return nil
}

type ReferenceCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	env       string
}

// NewReferenceCommand returns the reference command.
func NewReferenceCommand(rootCmd *RootCommand, app *kingpin.Application) *ReferenceCommand {
	c := &ReferenceCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reference", "Reference a version file into the host application scene.")
	c.Cmd.Flag("env", "Host application environment.").Default(EnvironmentFake).EnumVar(&c.env, EnvironmentFake)
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

func (c ReferenceCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReferenceCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	version, project, err := envOpTarget(ctx, repo, c.versionID)
	if err != nil {
		return err
	}

	env, err := newEnvironment(c.rootCmd, c.env, *project)
	if err != nil {
		return err
	}

	if err := env.Reference(ctx, *version); err != nil {
		return fmt.Errorf("could not reference version: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Referenced v%03d of %s/%s\n", version.VersionNumber, version.TaskID, version.TakeName)

	return nil
}
