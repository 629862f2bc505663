package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/metrics"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
	"github.com/san-kum/psim/internal/simulations"
	"github.com/san-kum/psim/internal/storage"
)

type runOptions struct {
	params      paramFlags
	seed        uint64
	steps       int
	fields      []string
	plot        bool
	save        bool
	json        bool
	metricsAddr string
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [simulation]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args[0])
		},
	}
	o.params.register(cmd)
	cmd.Flags().Uint64Var(&o.seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().IntVar(&o.steps, "steps", 1000, "ticks to run")
	cmd.Flags().StringSliceVarP(&o.fields, "field", "f", nil, "fields to record")
	cmd.Flags().BoolVar(&o.plot, "plot", false, "plot recorded fields")
	cmd.Flags().BoolVar(&o.save, "save", true, "store the run under --data")
	cmd.Flags().BoolVar(&o.json, "json", false, "write the run as json to stdout")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address until interrupted")
	return cmd
}

func (o *runOptions) run(ctx context.Context, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	entry, err := simulations.NewRegistry().Get(name)
	if err != nil {
		return err
	}
	cfg, presets, err := o.params.resolve(entry)
	if err != nil {
		return err
	}

	model, err := entry.New(randoms.New(o.seed), cfg)
	if err != nil {
		return err
	}
	if c, ok := model.(interface{ Close() error }); ok {
		defer c.Close()
	}

	s := sim.New(model)
	ms, err := defaultMetrics(model, cfg)
	if err != nil {
		return err
	}
	for _, m := range ms {
		s.AddMetric(m)
	}

	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := metrics.NewCollector(reg)
		if err != nil {
			return err
		}
		rec := collector.Recorder(name, o.fields...)
		s.SetRecorder(rec)
		s.AddObserver(rec)

		srv := &http.Server{Addr: o.metricsAddr, Handler: collector.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
	}

	logger.Infof("running %s for %d ticks with seed %d", name, o.steps, o.seed)
	start := time.Now()
	result, runErr := s.Run(ctx, sim.Config{Steps: o.steps, Record: o.fields})
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	if o.save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Simulation: name,
			Seed:       o.seed,
			Presets:    presets,
			Fields:     o.fields,
		}, cfg, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "run id: %s\n", runID)
	}

	if o.json {
		if err := storage.Export(os.Stdout, name, o.seed, result); err != nil {
			return err
		}
	} else {
		printSummary(name, result, elapsed)
	}

	if o.plot {
		if err := plotResult(result, o.fields); err != nil {
			return err
		}
	}

	if runErr != nil {
		return errors.Annotatef(runErr, "after %d ticks", result.StepsTaken)
	}

	if o.metricsAddr != "" {
		fmt.Fprintf(os.Stderr, "serving metrics on %s, interrupt to exit\n", o.metricsAddr)
		<-ctx.Done()
	}
	return nil
}

// defaultMetrics attaches the run metrics whose fields the model has. The
// delta-v metric uses the follower's configured truth mass.
func defaultMetrics(m sim.Model, cfg *config.Configuration) ([]sim.Metric, error) {
	has := func(name string) bool {
		_, err := m.Field(name)
		return err == nil
	}

	var out []sim.Metric
	if has(simulations.LeaderTruth + ".E") {
		out = append(out, metrics.NewEnergyDrift(simulations.LeaderTruth+".E"))
	}
	if has(simulations.LeaderEstimate + ".r.error") {
		out = append(out,
			metrics.NewMean("leader_position_error", simulations.LeaderEstimate+".r.error"),
			metrics.NewWithinBound("leader_position_error_within_10m", simulations.LeaderEstimate+".r.error", 10),
		)
	}
	if has(simulations.FollowerEstimate + ".r.error") {
		out = append(out, metrics.NewMean("follower_position_error", simulations.FollowerEstimate+".r.error"))
	}
	if has(simulations.RelativeEstimate + ".r.hill.error") {
		out = append(out, metrics.NewMean("relative_position_error", simulations.RelativeEstimate+".r.hill.error"))
	}
	if has(simulations.Thruster + ".J.eci") {
		mass, err := cfg.Real(simulations.FollowerTruth + ".m")
		if err != nil {
			return nil, errors.Annotate(err, "delta-v metric")
		}
		out = append(out, metrics.NewDeltaV(simulations.Thruster+".J.eci", mass))
	}
	return out, nil
}

func printSummary(name string, result *sim.Result, elapsed time.Duration) {
	fmt.Printf("%s: %d ticks in %v\n", name, result.StepsTaken, elapsed)
	if len(result.Metrics) == 0 {
		return
	}

	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, n := range names {
		fmt.Fprintf(w, "  %s\t%.6g\n", n, result.Metrics[n])
	}
	w.Flush()
}

func plotResult(result *sim.Result, fields []string) error {
	for _, name := range fields {
		data, err := result.Series(name)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}
	return nil
}

func newBenchCmd() *cobra.Command {
	var (
		params paramFlags
		steps  int
		seeds  int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "bench [simulation]",
		Short: "benchmark a simulation across seeds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := simulations.NewRegistry().Get(args[0])
			if err != nil {
				return err
			}
			cfg, _, err := params.resolve(entry)
			if err != nil {
				return err
			}

			ids := benchSeeds(seed, seeds)
			build := func(rg *randoms.Generator) (sim.Model, error) { return entry.New(rg, cfg) }

			start := time.Now()
			results, err := sim.NewEnsemble(build, ids...).Run(context.Background(), sim.Config{Steps: steps})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			total := 0
			for _, r := range results {
				total += r.StepsTaken
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SIMULATION\tSEEDS\tTICKS\tTIME\tTICKS/SEC")
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n", args[0], seeds, total, elapsed, float64(total)/elapsed.Seconds())
			return w.Flush()
		},
	}
	params.register(cmd)
	cmd.Flags().IntVar(&steps, "steps", 10000, "ticks per seed")
	cmd.Flags().IntVar(&seeds, "seeds", 4, "independent seeds run in parallel")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed of the generator that draws each instance's seed")
	return cmd
}

// benchSeeds draws n instance seeds from a generator seeded with seed.
func benchSeeds(seed uint64, n int) []uint64 {
	g := randoms.New(seed)
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = g.Uint64()
	}
	return ids
}
