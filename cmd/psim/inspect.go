package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
	"github.com/san-kum/psim/internal/simulations"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func newSimulationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulations",
		Short: "list the simulations that can be run",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := simulations.NewRegistry()
			for _, n := range reg.Names() {
				e, _ := reg.Get(n)
				fmt.Printf("%s  %s\n", heading.Render(e.Name), dim.Render(e.Description))
				fmt.Printf("  %s\n", dim.Render("presets: "+strings.Join(e.Presets, ", ")))
			}
			return nil
		},
	}
}

func newFieldsCmd() *cobra.Command {
	var params paramFlags
	cmd := &cobra.Command{
		Use:   "fields [simulation]",
		Short: "list a simulation's fields in step order",
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
			m, err := entry.New(randoms.New(0), cfg)
			if err != nil {
				return err
			}

			fields := m.Fields()
			width := 0
			for _, f := range fields {
				width = max(width, len(f.Name()))
			}
			fmt.Println(heading.Render(fmt.Sprintf("%s: %d fields", entry.Name, len(fields))))
			for _, f := range fields {
				fmt.Printf("  %s  %s  %s\n",
					label.Render(fmt.Sprintf("%-*s", width, f.Name())),
					dim.Render(fmt.Sprintf("%-10s", f.Kind())),
					formatValue(f.Value()),
				)
			}
			return nil
		},
	}
	params.register(cmd)
	return cmd
}

func formatValue(v any) string {
	switch x := v.(type) {
	case sim.Vector:
		parts := make([]string, len(x))
		for i, c := range x {
			parts[i] = fmt.Sprintf("%.6g", c)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case float64:
		return fmt.Sprintf("%.6g", x)
	default:
		return fmt.Sprint(v)
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [preset...]",
		Short: "list parameter presets, or the keys of the named ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, p := range config.ListPresets() {
					fmt.Printf("%s  %s\n", heading.Render(p), dim.Render(fmt.Sprintf("%d keys", len(config.Presets[p]))))
				}
				return nil
			}
			for _, p := range args {
				cfg, err := config.Preset(p)
				if err != nil {
					return err
				}
				fmt.Println(heading.Render(p))
				for _, k := range cfg.Keys() {
					v, _ := cfg.Value(k)
					fmt.Printf("  %s = %v\n", label.Render(k), v)
				}
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var params paramFlags
	cmd := &cobra.Command{
		Use:   "config [simulation]",
		Short: "print the merged configuration a run would use, as yaml",
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
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
	params.register(cmd)
	return cmd
}
