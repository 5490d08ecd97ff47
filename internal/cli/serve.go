package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/server"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func serveCommand(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rt.cfg, rt.log)
		},
	}

	cmd.Flags().StringVar(&rt.cfg.Port, "port", rt.cfg.Port, "Port to listen on")
	cmd.Flags().StringVar(&rt.cfg.DBDriver, "db-driver", rt.cfg.DBDriver, "Location store backend (sqlite, mysql, memory)")
	cmd.Flags().StringVar(&rt.cfg.DBPath, "db-path", rt.cfg.DBPath, "SQLite database file")
	cmd.Flags().BoolVar(&rt.cfg.SeedOnStartup, "seed", rt.cfg.SeedOnStartup, "Insert default locations into an empty store")

	return cmd
}

func serve(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) error {
	m, err := metrics.New()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.StoreConfig(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()

	if cfg.SeedOnStartup {
		if _, err := store.EnsureSeeded(ctx, st, log); err != nil {
			return err
		}
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	base := providers.Config{
		Client:         httpClient,
		MaxRetries:     cfg.UpstreamMaxRetries,
		BreakerTimeout: cfg.BreakerTimeout,
		Observer:       m,
	}

	geoCfg := base
	geoCfg.BaseURL = cfg.GeocodingURL
	forecastCfg := base
	forecastCfg.BaseURL = cfg.WeatherURL

	service := weather.NewService(st,
		providers.NewOpenMeteoGeocoder(geoCfg),
		providers.NewOpenMeteoProvider(forecastCfg),
		log)

	app := server.NewApp(server.Options{
		Service:   service,
		Metrics:   m,
		Logger:    log,
		AccessLog: true,
	})

	return server.Run(ctx, app, ":"+cfg.Port, log)
}
