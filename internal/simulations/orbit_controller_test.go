package simulations_test

import (
	"context"
	"errors"

	jujuerrors "github.com/juju/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
	"github.com/san-kum/psim/internal/simulations"
)

func defaults() *config.Configuration {
	e, err := simulations.NewRegistry().Get("orbit_controller_test")
	Expect(err).NotTo(HaveOccurred())
	cfg, err := e.Configuration()
	Expect(err).NotTo(HaveOccurred())
	return cfg
}

func build(seed uint64, cfg *config.Configuration) *simulations.OrbitControllerTest {
	oct, err := simulations.NewOrbitControllerTest(randoms.New(seed), cfg)
	Expect(err).NotTo(HaveOccurred())
	return oct
}

func step(oct *simulations.OrbitControllerTest, n int) {
	for i := 0; i < n; i++ {
		Expect(oct.Step()).To(Succeed())
	}
}

func get(oct *simulations.OrbitControllerTest, name string) any {
	v, err := oct.Get(name)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("OrbitControllerTest", func() {
	var cfg *config.Configuration

	BeforeEach(func() {
		cfg = defaults()
	})

	Describe("composition", func() {
		It("registers the sub-models in dependency order", func() {
			oct := build(1, cfg)
			Expect(oct.Len()).To(Equal(9))

			names := oct.Names()
			Expect(names[0]).To(Equal("truth.t.ns"))
			Expect(names).To(ContainElements(
				"truth.leader.orbit.r.eci",
				"sensors.follower.gps.valid",
				"fc.follower.orbit.r.error",
				"fc.follower.orbit_controller.J.cmd",
				"truth.follower.thruster.J.eci",
			))

			position := func(name string) int {
				for i, n := range names {
					if n == name {
						return i
					}
				}
				return -1
			}
			order := []string{
				"truth.t.ns",
				"truth.leader.orbit.r.eci",
				"truth.follower.orbit.r.eci",
				"sensors.leader.gps.r.eci",
				"sensors.follower.gps.r.eci",
				"fc.leader.orbit.r.eci",
				"fc.follower.orbit.r.eci",
				"fc.follower.orbit_controller.J.cmd",
				"truth.follower.thruster.J.eci",
			}
			for i := 1; i < len(order); i++ {
				Expect(position(order[i-1])).To(BeNumerically("<", position(order[i])), order[i])
			}
		})

		It("fails without a configuration parameter and returns no list", func() {
			oct, err := simulations.NewOrbitControllerTest(randoms.New(1), cfg.Without("fc.follower.orbit.alpha"))
			Expect(oct).To(BeNil())

			var cerr *config.Error
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Key).To(Equal("fc.follower.orbit.alpha"))
			Expect(errors.Is(err, jujuerrors.NotValid)).To(BeTrue())
		})

		It("requires both handles", func() {
			_, err := simulations.NewOrbitControllerTest(nil, cfg)
			Expect(err).To(HaveOccurred())
			_, err = simulations.NewOrbitControllerTest(randoms.New(1), nil)
			Expect(err).To(HaveOccurred())
		})

		It("reports unknown fields", func() {
			oct := build(1, cfg)
			_, err := oct.Get("fc.follower.orbit_controller.nope")

			var uerr *sim.UnknownFieldError
			Expect(errors.As(err, &uerr)).To(BeTrue())
			Expect(errors.Is(oct.Set("truth.nope", 1.0), jujuerrors.NotFound)).To(BeTrue())
		})
	})

	Describe("stepping", func() {
		It("makes earlier writes visible to later models in the same tick", func() {
			noiseless, err := cfg.With("sensors.leader.gps.r.sigma", 0.0)
			Expect(err).NotTo(HaveOccurred())
			oct := build(1, noiseless)
			step(oct, 3)

			Expect(get(oct, "sensors.leader.gps.r.eci")).To(Equal(get(oct, "truth.leader.orbit.r.eci")))
		})

		It("applies the thruster impulse on the tick after it fires", func() {
			fired, coasting := build(1, cfg), build(1, cfg)
			step(fired, 100)
			step(coasting, 100)

			Expect(get(fired, "fc.follower.orbit_controller.firing")).To(BeTrue())
			j := get(fired, "truth.follower.thruster.J.eci").(sim.Vector)
			Expect(j.Norm()).To(BeNumerically(">", 0))
			Expect(coasting.Set("truth.follower.thruster.J.eci", []float64{0, 0, 0})).To(Succeed())

			step(fired, 1)
			step(coasting, 1)
			Expect(get(fired, "truth.follower.thruster.J.eci").(sim.Vector).Norm()).To(BeZero())

			dv := get(fired, "truth.follower.orbit.v.eci").(sim.Vector).Sub(get(coasting, "truth.follower.orbit.v.eci").(sim.Vector))
			want := j.Scale(1 / config.DefaultMass)
			Expect(dv.Sub(want).Norm()).To(BeNumerically("<", 1e-6))
		})

		It("fires once per controller period", func() {
			oct := build(1, cfg)
			step(oct, 3000)

			Expect(get(oct, "truth.t.ns")).To(Equal(int64(300_000_000_000)))
			Expect(get(oct, "fc.follower.orbit_controller.fires")).To(Equal(int64(30)))
			Expect(oct.Ticks()).To(Equal(uint64(3000)))
		})

		It("keeps the estimators close to the truth", func() {
			oct := build(2, cfg)
			step(oct, 500)

			Expect(get(oct, "fc.leader.orbit.r.error")).To(BeNumerically("<", 20))
			Expect(get(oct, "fc.follower.orbit.r.error")).To(BeNumerically("<", 20))
		})
	})

	Describe("randomness", func() {
		It("is bit-identical for a fixed seed", func() {
			a, b := build(42, cfg), build(42, cfg)
			step(a, 150)
			step(b, 150)

			for _, name := range a.Names() {
				Expect(get(a, name)).To(Equal(get(b, name)), name)
			}
		})

		It("only changes stochastic fields between seeds", func() {
			a, b := build(1, cfg), build(2, cfg)
			step(a, 10)
			step(b, 10)

			for _, name := range []string{"truth.t.ns", "truth.t.s", "truth.leader.orbit.r.eci", "truth.leader.orbit.v.eci"} {
				Expect(get(a, name)).To(Equal(get(b, name)), name)
			}
			for _, name := range []string{"sensors.leader.gps.r.eci", "sensors.follower.gps.v.eci", "fc.leader.orbit.r.eci"} {
				Expect(get(a, name)).NotTo(Equal(get(b, name)), name)
			}
		})

		It("runs seeds side by side in an ensemble", func() {
			builder := func(rg *randoms.Generator) (sim.Model, error) {
				oct, err := simulations.NewOrbitControllerTest(rg, cfg)
				if err != nil {
					return nil, err
				}
				return oct, nil
			}
			results, err := sim.NewEnsemble(builder, 1, 2, 3).Run(context.Background(), sim.Config{
				Steps:  20,
				Record: []string{"truth.leader.orbit.E", "sensors.leader.gps.r.eci"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))

			for _, r := range results[1:] {
				Expect(r.Samples["truth.leader.orbit.E"]).To(Equal(results[0].Samples["truth.leader.orbit.E"]))
				Expect(r.Samples["sensors.leader.gps.r.eci"]).NotTo(Equal(results[0].Samples["sensors.leader.gps.r.eci"]))
			}
		})
	})
})

var _ = Describe("Registry", func() {
	It("builds and steps every registered simulation from its presets", func() {
		reg := simulations.NewRegistry()
		Expect(reg.Names()).To(Equal([]string{"orbit_controller_test", "orbit_estimator_test", "relative_orbit_estimator_test", "single_orbit_gnc"}))

		for _, name := range reg.Names() {
			e, err := reg.Get(name)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := e.Configuration()
			Expect(err).NotTo(HaveOccurred())

			m, err := reg.Build(name, 7, cfg)
			Expect(err).NotTo(HaveOccurred(), name)
			for i := 0; i < 10; i++ {
				Expect(m.Step()).To(Succeed(), name)
			}
		}
	})

	It("estimates the relative orbit within its reported uncertainty", func() {
		e, err := simulations.NewRegistry().Get("relative_orbit_estimator_test")
		Expect(err).NotTo(HaveOccurred())
		cfg, err := e.Configuration()
		Expect(err).NotTo(HaveOccurred())

		l, err := simulations.NewRelativeOrbitEstimatorTest(randoms.New(11), cfg)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 600; i++ {
			Expect(l.Step()).To(Succeed())
		}

		valid, err := l.Get(simulations.RelativeEstimate + ".is_valid")
		Expect(err).NotTo(HaveOccurred())
		Expect(valid).To(BeTrue())

		dr, err := l.Get(simulations.RelativeEstimate + ".r.hill")
		Expect(err).NotTo(HaveOccurred())
		Expect(dr.(sim.Vector).Norm()).To(BeNumerically(">", 50))

		errVec, err := l.Get(simulations.RelativeEstimate + ".r.hill.error")
		Expect(err).NotTo(HaveOccurred())
		sigma, err := l.Get(simulations.RelativeEstimate + ".r.hill.sigma")
		Expect(err).NotTo(HaveOccurred())
		for i := range 3 {
			s := sigma.(sim.Vector)[i]
			Expect(s).To(BeNumerically(">", 0))
			Expect(s).To(BeNumerically("<", 7.1))
			Expect(errVec.(sim.Vector)[i]).To(BeNumerically("~", 0, 6*s))
		}
	})

	It("rejects unknown names", func() {
		_, err := simulations.NewRegistry().Build("nope", 1, nil)
		Expect(errors.Is(err, jujuerrors.NotFound)).To(BeTrue())
	})

	It("applies overrides after presets", func() {
		e, err := simulations.NewRegistry().Get("single_orbit_gnc")
		Expect(err).NotTo(HaveOccurred())
		override, err := config.New(map[string]any{"truth.dt.ns": int64(5)})
		Expect(err).NotTo(HaveOccurred())

		cfg, err := e.Configuration(override)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Integer("truth.dt.ns")).To(Equal(int64(5)))
	})
})
