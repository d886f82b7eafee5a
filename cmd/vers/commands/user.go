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

type UserCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	login string
	name  string
}

// NewUserCreateCommand returns the user create command.
func NewUserCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *UserCreateCommand {
	c := &UserCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a new pipeline user.")
	c.Cmd.Flag("login", "Unique login of the user.").Required().StringVar(&c.login)
	c.Cmd.Flag("name", "Display name of the user.").Short('n').StringVar(&c.name)

	return c
}

func (c UserCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c UserCreateCommand) Run(ctx context.Context) error {
	if c.rootCmd.ReadOnly {
		return fmt.Errorf("cannot create user: %w", model.ErrReadOnly)
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:    ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Login: c.login,
		Name:  c.name,
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "User created!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:    %s\n", user.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Login: %s\n", user.Login)

	return nil
}
