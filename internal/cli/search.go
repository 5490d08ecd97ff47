package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func searchCommand(rt *state) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search for places by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rt.client()
			if interactive {
				return searchInteractive(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout(), rt)
			}

			query := strings.Join(args, " ")
			results, err := c.SearchLocations(cmd.Context(), query)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), query, results)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read queries from stdin, one per line, debounced")

	return cmd
}

// searchInteractive treats each stdin line as the current contents of a search
// box. Only input that settles for the debounce period is searched.
func searchInteractive(ctx context.Context, c *client.Client, in io.Reader, out io.Writer, rt *state) error {
	var mu sync.Mutex
	d := client.NewDebouncer(rt.cfg.SearchDebounce, func(q string) {
		results, err := c.SearchLocations(ctx, q)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			rt.log.Debug("search failed", zap.String("query", q), zap.Error(err))
			printf(out, "%s\n", err)
			return
		}
		printResults(out, q, results)
	})
	defer d.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.Push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	d.Flush()
	return nil
}

func printResults(w io.Writer, query string, results []weather.SearchResult) {
	if len(results) == 0 {
		printf(w, "No results for %q.\n", query)
		return
	}
	for _, r := range results {
		label := r.Name
		if r.Admin1 != "" {
			label += ", " + r.Admin1
		}
		if r.Country != "" {
			label += ", " + r.Country
		}
		printf(w, "%s (%.4f, %.4f)\n", label, r.Latitude, r.Longitude)
	}
}
