package commands

import (
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"zheliyou/internal/domain/models"
)

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream table changes until interrupted",
	}

	trips := &cobra.Command{
		Use:   "trips",
		Short: "Print every trip change as a JSON line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var mu sync.Mutex
			enc := json.NewEncoder(cmd.OutOrStdout())
			listener := func(e models.ChangeEvent) {
				mu.Lock()
				defer mu.Unlock()
				_ = enc.Encode(e)
			}

			sub, err := c.services().Realtime.SubscribeToTrips(ctx, listener).Unwrap()
			if err != nil {
				return err
			}
			defer sub.Stop()

			cmd.PrintErrln("watching trips, press Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}

	cmd.AddCommand(trips)
	return cmd
}
