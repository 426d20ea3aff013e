package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/flux/observability"
	"github.com/tailored-agentic-units/flux/store"
)

func storesCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List the discoverable demo stores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			root, err := store.New(cfg, store.WithObserver(observability.NoOpObserver{}))
			if err != nil {
				return fmt.Errorf("failed to create root: %w", err)
			}
			if err := registerDemoStores(root); err != nil {
				return fmt.Errorf("failed to create demo stores: %w", err)
			}

			out := cmd.OutOrStdout()
			stores := root.GetStores()
			for _, name := range slices.Sorted(maps.Keys(stores)) {
				s := stores[name]
				fmt.Fprintf(out, "%s (%s)\n", name, s.DispatchToken())
				if actions := s.ActionNames(); len(actions) > 0 {
					fmt.Fprintf(out, "  actions:   %s\n", strings.Join(actions, ", "))
				}
				if selectors := s.Selectors(); len(selectors) > 0 {
					fmt.Fprintf(out, "  selectors: %s\n", strings.Join(selectors, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to root config (JSON or YAML)")

	return cmd
}
