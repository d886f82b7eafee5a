package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/studiokit/vers/internal/model"
	"github.com/studiokit/vers/internal/tree"
)

type TaskCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	projectID string
	name      string
	parentID  string
	dependsOn []string
}

// NewTaskCreateCommand returns the task create command.
func NewTaskCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskCreateCommand {
	c := &TaskCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a new task.")
	c.Cmd.Flag("project", "ID of the owning project.").Required().StringVar(&c.projectID)
	c.Cmd.Flag("name", "Name of the task.").Short('n').Required().StringVar(&c.name)
	c.Cmd.Flag("parent", "ID of the parent task (empty hangs the task from the project).").StringVar(&c.parentID)
	c.Cmd.Flag("depends-on", "ID of a task this task depends on (repeatable).").StringsVar(&c.dependsOn)

	return c
}

func (c TaskCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCreateCommand) Run(ctx context.Context) error {
	if c.rootCmd.ReadOnly {
		return fmt.Errorf("cannot create task: %w", model.ErrReadOnly)
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	user, err := currentUser(ctx, c.rootCmd, repo)
	if err != nil {
		return err
	}

	// The project must exist before hanging tasks from it.
	if _, err := repo.GetProject(ctx, c.projectID); err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:            ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		ProjectID:     c.projectID,
		ParentID:      c.parentID,
		Name:          c.name,
		DependencyIDs: c.dependsOn,
		CreatedBy:     user.ID,
		CreatedAt:     now,
	}

	if err := repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task created!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:   %s\n", task.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Name: %s\n", task.Name)

	return nil
}

type TaskTreeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	mine   bool
	format string
}

// NewTaskTreeCommand returns the task tree command.
func NewTaskTreeCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskTreeCommand {
	c := &TaskTreeCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("tree", "Show the project task hierarchy.")
	c.Cmd.Flag("mine", "Show only tasks of the current user.").BoolVar(&c.mine)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c TaskTreeCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskTreeCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	builder, err := tree.NewBuilder(tree.BuilderConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create tree builder: %w", err)
	}

	opts := tree.BuildOptions{}
	if c.mine {
		user, err := currentUser(ctx, c.rootCmd, repo)
		if err != nil {
			return err
		}
		opts.CreatedBy = user.ID
	}

	t, err := builder.Build(ctx, opts)
	if err != nil {
		return fmt.Errorf("could not build task tree: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format).PrintTaskTree(t); err != nil {
		return fmt.Errorf("could not print task tree: %w", err)
	}

	return nil
}
