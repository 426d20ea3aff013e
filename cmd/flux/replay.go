package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/flux/action"
	"github.com/tailored-agentic-units/flux/observability"
	"github.com/tailored-agentic-units/flux/store"
)

// script is a replayable sequence of actions. JSON scripts parse as YAML.
//
//	actions:
//	  - type: increment
//	    data: 2
//	  - type: add
//	    data: write docs
//	    deferred: true
type script struct {
	Actions []scriptAction `yaml:"actions"`
}

type scriptAction struct {
	Type     string `yaml:"type"`
	Data     any    `yaml:"data"`
	Deferred bool   `yaml:"deferred"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &s, nil
}

func replayCmd() *cobra.Command {
	var (
		configFile string
		scriptFile string
		verbose    bool
		metrics    bool
		keepGoing  bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Dispatch a scripted sequence of actions",
		Long: `Replay creates the demo stores, dispatches every action in the script
in order, and prints the final root state as JSON.

Actions marked deferred are dispatched as resolved futures, which exercises
the deferred dispatch path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			s, err := loadScript(scriptFile)
			if err != nil {
				return err
			}

			observer := observability.Observer(observability.NewSlogObserver(newLogger(verbose)))

			var registry *prometheus.Registry
			if metrics {
				registry = prometheus.NewRegistry()
				prom, err := observability.NewPrometheusObserver(registry, "flux")
				if err != nil {
					return fmt.Errorf("failed to create metrics observer: %w", err)
				}
				observer = observability.NewMultiObserver(observer, prom)
			}

			root, err := store.New(cfg, store.WithObserver(observer))
			if err != nil {
				return fmt.Errorf("failed to create root: %w", err)
			}
			if err := registerDemoStores(root); err != nil {
				return fmt.Errorf("failed to create demo stores: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := replay(ctx, root, s, keepGoing); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			encoded, err := json.MarshalIndent(root.GetState(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode root state: %w", err)
			}
			fmt.Fprintln(out, string(encoded))

			if registry != nil {
				return writeMetrics(out, registry)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to root config (JSON or YAML)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "Path to action script (YAML or JSON)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every dispatcher and store event")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Print Prometheus event counters after the replay")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue after a rejected action")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func replay(ctx context.Context, root *store.Root, s *script, keepGoing bool) error {
	for i, sa := range s.Actions {
		var f *action.Future
		if sa.Deferred {
			f = root.Dispatch(ctx, action.Promise(sa.Type, sa.Data), nil)
		} else {
			f = root.Dispatch(ctx, action.New(sa.Type, sa.Data), nil)
		}

		if _, err := f.Await(ctx); err != nil {
			if keepGoing {
				continue
			}
			return fmt.Errorf("action %d (%s): %w", i+1, sa.Type, err)
		}
	}
	return nil
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
