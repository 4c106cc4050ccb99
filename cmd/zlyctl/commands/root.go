// Package commands implements zlyctl, an operator CLI over the same
// services the HTTP API uses.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"zheliyou/internal/app"
	intconfig "zheliyou/internal/config"
	"zheliyou/internal/remote"
	"zheliyou/internal/services"
)

type cli struct {
	envFile string
	backend string
	token   string
	asJSON  bool

	// newWire is replaced in tests.
	newWire func(cmd *cobra.Command, env intconfig.Env) (*app.Wire, error)
	wire    *app.Wire
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree; each call gets fresh state.
func NewRootCmd() *cobra.Command {
	c := &cli{
		newWire: func(cmd *cobra.Command, env intconfig.Env) (*app.Wire, error) {
			return app.NewWire(cmd.Context(), env)
		},
	}
	return c.root()
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "zlyctl",
		Short:         "Operate the zheliyou travel backend from the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.wire != nil {
				return nil
			}
			if c.envFile != "" {
				intconfig.LoadDotEnv(c.envFile)
			} else {
				intconfig.LoadDotEnv()
			}
			env := intconfig.LoadEnv()
			if c.backend != "" {
				env.Backend = strings.ToLower(c.backend)
			}
			w, err := c.newWire(cmd, env)
			if err != nil {
				return err
			}
			c.wire = w
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "dotenv file to load (default .env when present)")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "override BACKEND (supabase, mysql, memory)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "access token for calls made on behalf of a user")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print the raw result envelope as JSON")

	root.AddCommand(c.tripsCmd(), c.attractionsCmd(), c.authCmd(), c.watchCmd())
	return root
}

// services returns the set bound to --token when one was given.
func (c *cli) services() services.Set {
	return c.wire.Services.WithToken(c.token)
}

// emit prints r as JSON or through text, and turns a Failure into an error.
func emit[T any](c *cli, out io.Writer, r remote.Result[T], text func(io.Writer, T)) error {
	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	v, ok := r.Value()
	if !ok {
		return errors.New(r.Message())
	}
	if !c.asJSON && text != nil {
		text(out, v)
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
