package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pantainos/fmp/pkg/cache/memory"
	"github.com/pantainos/fmp/pkg/config"
	"github.com/pantainos/fmp/pkg/fmp"
	"github.com/pantainos/fmp/pkg/mcp"
	"github.com/pantainos/fmp/pkg/registry"
	"github.com/pantainos/fmp/pkg/tracker"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.APIKey == "" {
				log.Printf("warning: FMP_API_KEY not set, upstream calls will fail")
			}

			reg := registry.Default()
			if cfg.FamiliesPath != "" {
				reg, err = registry.Load(cfg.FamiliesPath)
				if err != nil {
					return fmt.Errorf("load families: %w", err)
				}
			}

			var recorder fmp.Recorder
			var summarizer mcp.CallSummarizer
			if cfg.Tracking.Enabled {
				tr, err := tracker.New(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("init tracker: %w", err)
				}
				defer func() { _ = tr.Close() }()
				recorder = tr
				summarizer = tr
			}

			cache := memory.New()
			client := fmp.NewClient(fmp.Options{
				BaseURL:   cfg.BaseURL,
				APIKey:    cfg.APIKey,
				Timeout:   cfg.Timeout.Std(),
				RateLimit: cfg.RateLimit,
				RateBurst: cfg.RateBurst,
				Retries:   cfg.Retries,
			}, cache, recorder)

			srv := mcp.New(client, reg, cache, summarizer, version)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("pantainos-fmp %s serving MCP on stdio", version)
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fmp.yaml", "path to config file")
	return cmd
}
