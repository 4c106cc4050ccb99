package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zheliyou/internal/domain/models"
	"zheliyou/internal/services"
)

func (c *cli) attractionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attractions",
		Short: "Browse and load the attractions catalog",
	}

	var city string
	list := &cobra.Command{
		Use:   "list",
		Short: "List attractions, best rated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.services().Attractions
			res := svc.GetAllAttractions(cmd.Context())
			if city != "" {
				res = svc.GetAttractionsByCity(cmd.Context(), city)
			}
			return emit(c, cmd.OutOrStdout(), res, printAttractions)
		},
	}
	list.Flags().StringVar(&city, "city", "", "only attractions in this city")

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert attractions from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			res := c.services().Seed.LoadAttractions(cmd.Context(), f)
			return emit(c, cmd.OutOrStdout(), res, func(w io.Writer, r services.SeedReport) {
				printf(w, "inserted %d, skipped %d\n", r.Inserted, r.Skipped)
				for _, p := range r.Problems {
					printf(w, "  %s\n", p)
				}
			})
		},
	}
	seed.Flags().StringVarP(&file, "file", "f", "", "YAML file with an attractions: list")
	_ = seed.MarkFlagRequired("file")

	cmd.AddCommand(list, seed)
	return cmd
}

func printAttractions(w io.Writer, list []models.Attraction) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printf(tw, "NAME\tCITY\tCATEGORY\tRATING\n")
	for _, a := range list {
		printf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.City, orDash(a.Category), fmt.Sprintf("%.1f", a.Rating))
	}
	_ = tw.Flush()
}
