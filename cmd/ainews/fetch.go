package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/ainews/internal/app"
	"github.com/deusflow/ainews/internal/logger"
	"github.com/deusflow/ainews/internal/news"
)

func newFetchCommand() *cobra.Command {
	var (
		asJSON  bool
		digest  bool
		preview int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one aggregation and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg, logger.Logger)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Service.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case digest:
				_, err := fmt.Fprintln(out, news.FormatDigest(resp.Items, preview, time.Now()))
				return err
			default:
				_, err := fmt.Fprint(out, app.FormatPreview(resp, preview))
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the hot-story digest")
	cmd.Flags().IntVarP(&preview, "limit", "n", 5, "number of items to print")
	return cmd
}
