package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func locationsCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"loc"},
		Short:   "Manage saved locations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved locations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				locs, err := rt.client().ListLocations(cmd.Context())
				if err != nil {
					return err
				}
				if len(locs) == 0 {
					printf(cmd.OutOrStdout(), "No saved locations.\n")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				printf(tw, "ID\tNAME\tREGION\tLAT\tLON\n")
				for _, l := range locs {
					printf(tw, "%d\t%s\t%s\t%.4f\t%.4f\n", l.ID, l.Name, region(l.Admin1, l.Country), l.Latitude, l.Longitude)
				}
				return tw.Flush()
			},
		},
		addCommand(rt),
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a saved location",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := rt.client().DeleteLocation(cmd.Context(), id); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Deleted location %d.\n", id)
				return nil
			},
		},
	)

	return cmd
}

func addCommand(rt *state) *cobra.Command {
	var country, admin1 string

	cmd := &cobra.Command{
		Use:   "add <name> <latitude> <longitude>",
		Short: "Save a location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[1])
			}
			lon, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[2])
			}

			in := weather.NewLocation{Name: args[0], Latitude: lat, Longitude: lon}
			if country != "" {
				in.Country = &country
			}
			if admin1 != "" {
				in.Admin1 = &admin1
			}

			loc, err := rt.client().CreateLocation(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Added %s (id %d).\n", loc.Name, loc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "Country name")
	cmd.Flags().StringVar(&admin1, "admin1", "", "State or region")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid location id %q", s)
	}
	return id, nil
}

func region(admin1, country *string) string {
	switch {
	case admin1 != nil && country != nil:
		return *admin1 + ", " + *country
	case country != nil:
		return *country
	case admin1 != nil:
		return *admin1
	}
	return "-"
}
