package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/studiokit/vers/internal/model"
)

type ProjectCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name     string
	code     string
	repoRoot string
	inactive bool
}

// NewProjectCreateCommand returns the project create command.
func NewProjectCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ProjectCreateCommand {
	c := &ProjectCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a new project.")
	c.Cmd.Flag("name", "Name of the project.").Short('n').Required().StringVar(&c.name)
	c.Cmd.Flag("code", "Short unique project code.").Required().StringVar(&c.code)
	c.Cmd.Flag("repo-root", "File area where version files of the project live.").StringVar(&c.repoRoot)
	c.Cmd.Flag("inactive", "Create the project as inactive (archived).").BoolVar(&c.inactive)

	return c
}

func (c ProjectCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectCreateCommand) Run(ctx context.Context) error {
	if c.rootCmd.ReadOnly {
		return fmt.Errorf("cannot create project: %w", model.ErrReadOnly)
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:             ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Name:           c.name,
		Code:           c.code,
		Active:         !c.inactive,
		RepositoryRoot: c.repoRoot,
		CreatedAt:      now,
	}

	if err := repo.CreateProject(ctx, project); err != nil {
		return fmt.Errorf("could not create project: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Project created!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:   %s\n", project.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Name: %s\n", project.Name)
	fmt.Fprintf(c.rootCmd.Stdout, "  Code: %s\n", project.Code)

	return nil
}

type ProjectListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewProjectListCommand returns the project list command.
func NewProjectListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ProjectListCommand {
	c := &ProjectListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List all projects.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ProjectListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProjectListCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("could not list projects: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format).PrintProjectList(projects); err != nil {
		return fmt.Errorf("could not print projects: %w", err)
	}

	return nil
}
