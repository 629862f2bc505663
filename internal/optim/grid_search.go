package optim

import (
	"context"
	"math"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/san-kum/psim/internal/config"
)

var logger = loggo.GetLogger("psim.optim")

// Objective scores one configuration; lower is better.
type Objective func(ctx context.Context, cfg *config.Configuration) (float64, error)

// GridSearch evaluates every combination of candidate values for a set of
// configuration keys on top of a base configuration.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, errors.NotValidf("%d parameters with %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, errors.NotValidf("empty range for %q", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Search returns the best parameters, their score and every trial in
// evaluation order. Trials whose objective fails are kept but never win.
// The search stops early when ctx is done.
func (g *GridSearch) Search(ctx context.Context, base *config.Configuration, objective Objective) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, base, make(map[string]float64), objective, func(t Trial) {
		trials = append(trials, t)
		if t.Err == nil && t.Score < best {
			best = t.Score
			bestParams = t.Params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, errors.NotFoundf("successful trial among %d", len(trials))
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	cfg *config.Configuration,
	current map[string]float64,
	objective Objective,
	report func(Trial),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		score, err := objective(ctx, cfg)
		if err != nil {
			logger.Debugf("trial %v failed: %v", current, err)
		}
		report(Trial{Params: current, Score: score, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next, err := cfg.With(paramName, val)
		if err != nil {
			return err
		}
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, newParams, objective, report); err != nil {
			return err
		}
	}
	return nil
}
