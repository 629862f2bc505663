package main

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/simulations"
)

// paramFlags are the configuration flags shared by every command that
// builds a simulation.
type paramFlags struct {
	presets []string
	files   []string
	sets    []string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&p.presets, "preset", nil, "presets to merge (default: the simulation's own)")
	cmd.Flags().StringSliceVarP(&p.files, "config", "c", nil, "yaml parameter files, merged after presets")
	cmd.Flags().StringArrayVar(&p.sets, "set", nil, "override a parameter, key=value (repeatable)")
}

// resolve merges presets, then files, then --set overrides.
func (p *paramFlags) resolve(e simulations.Entry) (*config.Configuration, []string, error) {
	presets := e.Presets
	if len(p.presets) > 0 {
		presets = p.presets
	}
	base, err := config.FromPresets(presets...)
	if err != nil {
		return nil, nil, err
	}

	layers := []*config.Configuration{base}
	if len(p.files) > 0 {
		files, err := config.LoadFiles(p.files...)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, files)
	}
	cfg := config.Merge(layers...)

	for _, s := range p.sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, nil, errors.NotValidf("--set %q, want key=value", s)
		}
		v, err := config.ParseValue(raw)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "--set %s", key)
		}
		if cfg, err = cfg.With(key, v); err != nil {
			return nil, nil, err
		}
	}
	return cfg, presets, nil
}
