// Package cli implements the weather-dashboard command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
)

// state carries what every subcommand needs once flags are parsed.
type state struct {
	cfg *config.AppConfig
	log *zap.Logger
}

func (r *state) client() *client.Client {
	return client.New(r.cfg.APIURL, client.WithLogger(r.log))
}

// RootCommand creates and returns the root command. Flags override the
// values loaded into cfg.
func RootCommand(cfg *config.AppConfig) *cobra.Command {
	rt := &state{cfg: cfg, log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "weather-dashboard",
		Short:         "Saved locations and current weather",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			rt.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = rt.log.Sync()
		},
	}

	setupFlags(rootCmd, cfg)

	rootCmd.AddCommand(
		serveCommand(rt),
		locationsCommand(rt),
		searchCommand(rt),
		weatherCommand(rt),
		watchCommand(rt),
	)

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, cfg *config.AppConfig) {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Base URL of the weather dashboard API")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json or console)")
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
