package sim

import (
	"context"
	"sync"

	"github.com/san-kum/psim/internal/randoms"
)

// Builder constructs an independent root model for one ensemble member.
type Builder func(rg *randoms.Generator) (Model, error)

// Ensemble runs one instance per seed on its own goroutine. Instances share
// nothing but what build closes over, which must be immutable.
type Ensemble struct {
	build Builder
	seeds []uint64
}

func NewEnsemble(build Builder, seeds ...uint64) *Ensemble {
	return &Ensemble{build: build, seeds: seeds}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.seeds))
	errs := make([]error, len(e.seeds))

	var wg sync.WaitGroup
	for i, seed := range e.seeds {
		wg.Add(1)
		go func(idx int, seed uint64) {
			defer wg.Done()

			m, err := e.build(randoms.New(seed))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = New(m).Run(ctx, cfg)
		}(i, seed)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
