package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/winterop-com/servicekit-sub001/api"
	"github.com/winterop-com/servicekit-sub001/config"
	"github.com/winterop-com/servicekit-sub001/logging"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var (
		name        string
		displayName string
		svcVersion  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Assemble and run a service from configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}

			logger := logging.New(logging.Options{
				Format: cfg.LogFormat,
				Level:  cfg.LogLevel,
			})

			builder := api.NewBuilder(api.Info{
				Name:        name,
				DisplayName: displayName,
				Version:     svcVersion,
			}).
				WithListenAddr(cfg.ListenAddr()).
				WithLogger(logger).
				WithHealth().
				WithSystem().
				WithJobs(cfg.JobsMaxConcurrency).
				WithMonitoring().
				WithLogging().
				WithLandingPage().
				WithCORS(cfg.CORSAllowedOrigins...)

			if cfg.DatabaseDSN != "" {
				builder = builder.WithDatabase(cfg.DatabaseDSN)
			}
			if len(cfg.APIKeys) > 0 || cfg.JWTSecret != "" {
				builder = builder.WithAuth(api.AuthOptions{
					Keys:      cfg.APIKeys,
					Header:    cfg.APIKeyHeader,
					JWTSecret: cfg.JWTSecret,
				})
			}
			if cfg.RateLimitRPS > 0 {
				builder = builder.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
			}

			app, err := builder.Build()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&name, "name", "servicekit", "Service identifier")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable service name")
	cmd.Flags().StringVar(&svcVersion, "service-version", version, "Service version string")
	return cmd
}
