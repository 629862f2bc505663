package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/psim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIMULATION\tTIME\tSEED\tSTEPS\tFIELDS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					run.ID,
					run.Simulation,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Seed,
					run.Steps,
					strings.Join(run.Fields, ","),
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var columns []string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored field series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := storage.New(dataDir).LoadSeries(args[0])
			if err != nil {
				return err
			}
			if len(series.Ticks) == 0 {
				return errors.New("no data to plot")
			}

			if len(columns) == 0 {
				columns = series.Columns
			}
			for _, col := range columns {
				data, ok := series.Values[col]
				if !ok {
					return errors.NotFoundf("column %q (available: %v)", col, series.Columns)
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(col),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&columns, "column", nil, "columns to plot (default: all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}
