package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/app/versioncreate"
	"github.com/studiokit/vers/internal/conventions"
	"github.com/studiokit/vers/internal/model"
)

type CreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	takeName string
	status   string
	note     string
	publish  bool
	env      string
}

// NewCreateCommand returns the create command.
func NewCreateCommand(rootCmd *RootCommand, app *kingpin.Application) *CreateCommand {
	c := &CreateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("create", "Create the next version of a task and take.")
	c.Cmd.Flag("task", "ID of the task.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("take", "Take name (defaults to the pipeline default take).").StringVar(&c.takeName)
	c.Cmd.Flag("status", "Status code of the new version (empty picks the first of the vocabulary).").StringVar(&c.status)
	c.Cmd.Flag("note", "Note attached to the new version.").StringVar(&c.note)
	c.Cmd.Flag("publish", "Create the version already published.").BoolVar(&c.publish)
	c.Cmd.Flag("env", "Host application environment (fake, none).").Default(EnvironmentNone).EnumVar(&c.env, EnvironmentNone, EnvironmentFake)

	return c
}

func (c CreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c CreateCommand) Run(ctx context.Context) error {
	if c.rootCmd.ReadOnly {
		return fmt.Errorf("cannot create version: %w", model.ErrReadOnly)
	}

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

	user, err := currentUser(ctx, c.rootCmd, repo)
	if err != nil {
		return err
	}

	task, err := repo.GetTask(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}
	project, err := repo.GetProject(ctx, task.ProjectID)
	if err != nil {
		return fmt.Errorf("could not get project: %w", err)
	}

	envName := c.env
	if envName == EnvironmentNone && defaults.Environment != "" {
		envName = defaults.Environment
	}
	env, err := newEnvironment(c.rootCmd, envName, *project)
	if err != nil {
		return err
	}

	svc, err := versioncreate.NewService(versioncreate.ServiceConfig{
		Repository:  repo,
		Environment: env,
		Logger:      c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	version, err := svc.Create(ctx, versioncreate.CreateOptions{
		TaskID:     c.taskID,
		TakeName:   takeName,
		User:       *user,
		StatusCode: c.status,
		Note:       c.note,
		Published:  c.publish,
	})
	if err != nil {
		return fmt.Errorf("could not create version: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Version created!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:      %s\n", version.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Version: v%03d\n", version.VersionNumber)
	fmt.Fprintf(c.rootCmd.Stdout, "  Take:    %s\n", version.TakeName)
	fmt.Fprintf(c.rootCmd.Stdout, "  Path:    %s\n", conventions.AbsoluteVersionPath(*project, version.Path))

	return nil
}
