package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pantainos/fmp/pkg/config"
	"github.com/pantainos/fmp/pkg/registry"
)

func newFamiliesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "families",
		Short: "List the data families and their cache TTLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			reg := registry.Default()
			if cfg.FamiliesPath != "" {
				reg, err = registry.Load(cfg.FamiliesPath)
				if err != nil {
					return err
				}
			}

			fmt.Printf("%-24s %-42s %8s\n", "Family", "Endpoint", "TTL")
			fmt.Println(strings.Repeat("-", 78))
			for _, f := range reg.Families() {
				fmt.Printf("%-24s %-42s %8s\n", f.Name, f.Endpoint, f.TTL)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fmp.yaml", "path to config file")
	return cmd
}
