package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/studiokit/vers/internal/app/review"
	"github.com/studiokit/vers/internal/storage"
)

func newReviewService(rootCmd *RootCommand, repo storage.Repository) (*review.Service, error) {
	svc, err := review.NewService(review.ServiceConfig{
		Repository: repo,
		ReadOnly:   rootCmd.ReadOnly,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, nil
}

type PublishCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	unpublish bool
}

// NewPublishCommand returns the publish command.
func NewPublishCommand(rootCmd *RootCommand, app *kingpin.Application) *PublishCommand {
	c := &PublishCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("publish", "Mark a version as published.")
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

// NewUnpublishCommand returns the unpublish command.
func NewUnpublishCommand(rootCmd *RootCommand, app *kingpin.Application) *PublishCommand {
	c := &PublishCommand{rootCmd: rootCmd, unpublish: true}

	c.Cmd = app.Command("unpublish", "Remove the published mark of a version.")
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)

	return c
}

func (c PublishCommand) Name() string { return c.Cmd.FullCommand() }

func (c PublishCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	user, err := currentUser(ctx, c.rootCmd, repo)
	if err != nil {
		return err
	}

	svc, err := newReviewService(c.rootCmd, repo)
	if err != nil {
		return err
	}

	version, err := svc.SetPublished(ctx, c.versionID, !c.unpublish, *user)
	if err != nil {
		return fmt.Errorf("could not change published flag: %w", err)
	}

	state := "published"
	if c.unpublish {
		state = "unpublished"
	}
	fmt.Fprintf(c.rootCmd.Stdout, "Version v%03d of %s/%s is now %s\n",
		version.VersionNumber, version.TaskID, version.TakeName, state)

	return nil
}

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	status    string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Change the workflow status of a version.")
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)
	c.Cmd.Arg("status", "Status code or name from the version status vocabulary.").Required().StringVar(&c.status)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	user, err := currentUser(ctx, c.rootCmd, repo)
	if err != nil {
		return err
	}

	svc, err := newReviewService(c.rootCmd, repo)
	if err != nil {
		return err
	}

	version, err := svc.SetStatus(ctx, c.versionID, c.status, *user)
	if err != nil {
		return fmt.Errorf("could not change status: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Version v%03d of %s/%s now has status %s\n",
		version.VersionNumber, version.TaskID, version.TakeName, version.StatusCode)

	return nil
}

type NoteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	versionID string
	content   string
}

// NewNoteCommand returns the note command.
func NewNoteCommand(rootCmd *RootCommand, app *kingpin.Application) *NoteCommand {
	c := &NoteCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("note", "Replace the note of a version.")
	c.Cmd.Arg("version", "ID of the version.").Required().StringVar(&c.versionID)
	c.Cmd.Arg("content", "Note content.").Required().StringVar(&c.content)

	return c
}

func (c NoteCommand) Name() string { return c.Cmd.FullCommand() }

func (c NoteCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := newReviewService(c.rootCmd, repo)
	if err != nil {
		return err
	}

	version, err := svc.SetNote(ctx, c.versionID, c.content)
	if err != nil {
		return fmt.Errorf("could not change note: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Note set on v%03d of %s/%s\n",
		version.VersionNumber, version.TaskID, version.TakeName)

	return nil
}
