package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/psim/internal/analysis"
	"github.com/san-kum/psim/internal/automation"
	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/optim"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
	"github.com/san-kum/psim/internal/simulations"
	"github.com/san-kum/psim/internal/storage"
)

func newAnalyzeCmd() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "dominant period of a stored field series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			series, err := st.LoadSeries(args[0])
			if err != nil {
				return err
			}
			cfg, err := st.LoadConfig(args[0])
			if err != nil {
				return err
			}
			dtNs, err := cfg.Integer(simulations.Clock + ".dt.ns")
			if err != nil {
				return err
			}

			if column == "" && len(series.Columns) > 0 {
				column = series.Columns[0]
			}
			data, ok := series.Values[column]
			if !ok {
				return errors.NotFoundf("column %q (available: %v)", column, series.Columns)
			}

			period, err := analysis.DominantPeriod(data, float64(dtNs)*1e-9)
			if err != nil {
				return err
			}
			fmt.Printf("%s: dominant period %.3f s (%.2f min)\n", column, period, period/60)
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "column to analyze (default: first)")
	return cmd
}

func newTuneCmd() *cobra.Command {
	var (
		params paramFlags
		grid   []string
		metric string
		steps  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "tune [simulation]",
		Short: "grid search configuration values minimizing a run metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := simulations.NewRegistry().Get(args[0])
			if err != nil {
				return err
			}
			base, _, err := params.resolve(entry)
			if err != nil {
				return err
			}

			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			search, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}

			objective := func(ctx context.Context, cfg *config.Configuration) (float64, error) {
				m, err := entry.New(randoms.New(seed), cfg)
				if err != nil {
					return 0, err
				}
				s := sim.New(m)
				ms, err := defaultMetrics(m, cfg)
				if err != nil {
					return 0, err
				}
				for _, mt := range ms {
					s.AddMetric(mt)
				}
				result, err := s.Run(ctx, sim.Config{Steps: steps})
				if err != nil {
					return 0, err
				}
				v, ok := result.Metrics[metric]
				if !ok {
					return 0, errors.NotFoundf("metric %q", metric)
				}
				return v, nil
			}

			best, score, trials, err := search.Search(cmd.Context(), base, objective)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), strings.ToUpper(metric))
			for _, t := range trials {
				row := make([]string, 0, len(names)+1)
				for _, n := range names {
					row = append(row, strconv.FormatFloat(t.Params[n], 'g', -1, 64))
				}
				if t.Err != nil {
					row = append(row, "error: "+t.Err.Error())
				} else {
					row = append(row, strconv.FormatFloat(t.Score, 'g', 6, 64))
				}
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			keys := make([]string, 0, len(best))
			for k := range best {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Printf("\nbest %s = %.6g with", metric, score)
			for _, k := range keys {
				fmt.Printf(" %s=%g", k, best[k])
			}
			fmt.Println()
			return nil
		},
	}
	params.register(cmd)
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "key=v1,v2,... values to search (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "follower_position_error", "run metric to minimize")
	cmd.Flags().IntVar(&steps, "steps", 3000, "ticks per trial")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed shared by every trial")
	return cmd
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	if len(specs) == 0 {
		return nil, nil, errors.NotValidf("empty grid, use --grid key=v1,v2")
	}
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, s := range specs {
		key, list, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, nil, errors.NotValidf("--grid %q, want key=v1,v2", s)
		}
		var values []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, errors.Annotatef(err, "--grid %s", key)
			}
			values = append(values, v)
		}
		names = append(names, key)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func newScenarioCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			results, err := automation.RunScenario(cmd.Context(), scenario, simulations.NewRegistry())
			for _, r := range results {
				fmt.Printf("%s: %d ticks, seed %d\n", r.Name, r.Result.StepsTaken, r.Seed)
				if !save {
					continue
				}
				st := storage.New(dataDir)
				if err := st.Init(); err != nil {
					return err
				}
				fields := make([]string, 0, len(r.Result.Samples))
				for f := range r.Result.Samples {
					fields = append(fields, f)
				}
				sort.Strings(fields)
				runID, err := st.Save(storage.RunMetadata{Simulation: r.Name, Seed: r.Seed, Fields: fields}, r.Config, r.Result)
				if err != nil {
					return err
				}
				fmt.Printf("  run id: %s\n", runID)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "store each run under --data")
	return cmd
}
