package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/deusflow/ainews/internal/app"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/server"
)

func newServeCommand() *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the news API and refresh the cache on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Debug {
				gin.SetMode(gin.ReleaseMode)
			}

			a, err := app.New(cfg, logger.Logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error("Shutdown error", "error", err)
				}
			}()

			ctx := cmd.Context()
			if a.Scheduler != nil {
				a.Scheduler.Start()
			} else {
				logger.Info("Background refresh disabled")
			}

			if warm {
				go func() {
					if _, err := a.Service.Refresh(ctx); err != nil && ctx.Err() == nil {
						logger.Warn("Initial refresh failed", "error", err)
					}
				}()
			}

			srv := server.New(server.Options{
				BasePath:   cfg.BasePath,
				CacheTTL:   cfg.CacheTTL,
				StaleTTL:   cfg.CacheStaleTTL,
				Service:    a.Service,
				Classifier: a.Lexicon,
				Limiter:    a.Limiter,
				Logger:     logger.Logger,
			})
			return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Port))
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", true, "populate the cache on startup")
	return cmd
}
