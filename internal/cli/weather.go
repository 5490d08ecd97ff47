package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func weatherCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <id>",
		Short: "Show current weather for a saved location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := rt.client().Weather(cmd.Context(), id)
			if err != nil {
				return err
			}
			printWeather(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func watchCommand(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Poll current weather for a saved location until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			updates := make(chan scheduler.Update)
			sched := scheduler.New([]int64{id}, rt.cfg.PollInterval, rt.client(), func(u scheduler.Update) {
				select {
				case updates <- u:
				case <-cmd.Context().Done():
				}
			}, rt.log)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case u := <-updates:
					printf(out, "[%s] ", u.At.Format(time.TimeOnly))
					if u.Err != nil {
						printf(out, "%s\n", u.Err)
						if client.IsNotFound(u.Err) {
							return u.Err
						}
						continue
					}
					printWeather(out, u.Data)
				}
			}
		},
	}
}

func printWeather(w io.Writer, d weather.WeatherData) {
	period := "night"
	if d.IsDay == 1 {
		period = "day"
	}
	printf(w, "%s, %.1f°C (feels like %d°C), humidity %d%%, wind %.1f km/h, %s\n",
		d.Condition, d.Temperature, client.FeelsLike(d), d.Humidity, d.WindSpeed, period)
}
