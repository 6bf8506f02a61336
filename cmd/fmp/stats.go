package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pantainos/fmp/pkg/config"
	"github.com/pantainos/fmp/pkg/tracker"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show upstream call statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			tr, err := tracker.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			summaries, err := tr.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No upstream calls recorded.")
				return nil
			}

			fmt.Printf("%-45s %8s %8s %8s %8s %10s\n",
				"Endpoint", "Calls", "OK", "Failed", "Cached", "Avg ms")
			fmt.Println(strings.Repeat("-", 93))
			for _, s := range summaries {
				fmt.Printf("%-45s %8d %8d %8d %8d %10.1f\n",
					s.Endpoint, s.Calls, s.Successes, s.Failures, s.CacheHits, s.AvgLatencyMs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fmp.yaml", "path to config file")
	return cmd
}
