package commands

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zheliyou/internal/domain/models"
)

func (c *cli) tripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "List and inspect trips",
	}

	var user string
	list := &cobra.Command{
		Use:   "list",
		Short: "List trips, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.services().Trips
			res := svc.GetAllTrips(cmd.Context())
			if user != "" {
				res = svc.GetUserTrips(cmd.Context(), user)
			}
			return emit(c, cmd.OutOrStdout(), res, printTrips)
		},
	}
	list.Flags().StringVar(&user, "user", "", "only trips created by this user id")

	get := &cobra.Command{
		Use:   "get <trip-id>",
		Short: "Show one trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.services().Trips.GetTripByID(cmd.Context(), args[0])
			return emit(c, cmd.OutOrStdout(), res, func(w io.Writer, t models.Trip) {
				printf(w, "id:          %s\n", t.ID)
				printf(w, "title:       %s\n", t.Title)
				printf(w, "destination: %s\n", t.Destination)
				printf(w, "dates:       %s .. %s\n", orDash(t.StartDate), orDash(t.EndDate))
				printf(w, "status:      %s\n", orDash(t.Status))
				printf(w, "creator:     %s\n", t.CreatorID)
				if t.Description != "" {
					printf(w, "\n%s\n", t.Description)
				}
			})
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func printTrips(w io.Writer, trips []models.Trip) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printf(tw, "ID\tTITLE\tDESTINATION\tSTART\tSTATUS\n")
	for _, t := range trips {
		printf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Destination, orDash(t.StartDate), orDash(t.Status))
	}
	_ = tw.Flush()
}
