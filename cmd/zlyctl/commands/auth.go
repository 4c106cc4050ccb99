package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"zheliyou/internal/domain/models"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "ZLY_PASSWORD"

func (c *cli) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and inspect the current user",
	}

	var email, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}
			if password == "" {
				return errors.New("password required (--password or " + PasswordEnv + ")")
			}
			res := c.services().Auth.SignIn(cmd.Context(), email, password)
			return emit(c, cmd.OutOrStdout(), res, func(w io.Writer, s models.Session) {
				printf(w, "signed in as %s (%s)\n", s.User.Email, s.User.ID)
				printf(w, "token: %s\n", s.AccessToken)
				printf(w, "expires in %ds\n", s.ExpiresIn)
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password")
	_ = login.MarkFlagRequired("email")

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user owning --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.services().Auth.GetCurrentUser(cmd.Context())
			return emit(c, cmd.OutOrStdout(), res, func(w io.Writer, p models.Principal) {
				printf(w, "%s %s\n", p.ID, p.Email)
			})
		},
	}

	cmd.AddCommand(login, whoami)
	return cmd
}
