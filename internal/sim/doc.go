// Package sim provides the model composition and time-stepping core.
//
// A simulation is a tree of models sharing one field namespace:
//
//   - [Field]: a named, typed value owned by exactly one model
//   - [Model]: construct / resolve / step / field access contract
//   - [Leaf]: field bookkeeping embedded by leaf models
//   - [ModelList]: ordered composite of models, itself a [Model]
//   - [Simulation]: drives a root model and records fields
//
// # Example
//
//	rg := randoms.New(42)
//	list, err := sim.NewModelList(rg, cfg, models.Clock("truth"), orbitFactory)
//	if err != nil {
//		return err
//	}
//	_ = list.Step()
//	r, _ := list.Get("truth.leader.orbit.r.eci")
//
// # Ordering
//
// Models are constructed, resolved and stepped in registration order.
// Because every model draws from the same [randoms.Generator], this order
// also fixes the random sequence each model sees.
//
// # Thread Safety
//
// ModelList and Simulation instances are NOT thread-safe. For independent
// parallel runs use [Ensemble], which builds one instance per seed.
package sim
