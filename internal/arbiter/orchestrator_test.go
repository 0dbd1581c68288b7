package arbiter_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/latctl/internal/arbiter"
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/control"
	"github.com/san-kum/latctl/internal/lateral"
)

func at(speed float64) lateral.Input {
	return lateral.Input{State: lateral.VehicleState{SpeedMPS: speed}}
}

var _ = Describe("Orchestrator", func() {
	var (
		cfg   *config.Config
		bank  control.Bank
		fixed [lateral.NumControllers]*control.Fixed
		orch  *arbiter.Orchestrator
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		for id := range fixed {
			fixed[id] = control.NewFixed(0)
			bank[id] = fixed[id]
		}
		fixed[lateral.PID].Set(0.1)
		fixed[lateral.INDI].Set(0.4)
		fixed[lateral.LQR].Set(0.25)
		fixed[lateral.Torque].Set(-0.7)

		var err error
		orch, err = arbiter.NewWithBank(cfg, bank, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts inactive", func() {
		s := orch.State()
		Expect(s.Active).To(BeFalse())
		Expect(s.Selected).To(Equal(lateral.NoController))
		Expect(s.PreviousOutputTorque).To(BeZero())
	})

	Context("when inactive", func() {
		It("emits a zero command and resets every controller", func() {
			cmd := orch.Update(false, at(20))
			Expect(cmd.Torque).To(BeZero())
			Expect(cmd.DesiredAngleDeg).To(BeZero())
			Expect(cmd.Diagnostics.Active).To(BeFalse())
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.NoController))
			for _, f := range fixed {
				Expect(f.Resets).To(Equal(1))
				Expect(f.Calls).To(BeZero())
			}
		})

		It("treats speed below the engagement minimum as inactive", func() {
			cmd := orch.Update(true, at(cfg.Vehicle.MinSteerSpeed/2))
			Expect(cmd.Diagnostics.Active).To(BeFalse())
			Expect(orch.State().Active).To(BeFalse())
		})
	})

	Context("on engagement", func() {
		It("resets all controllers before computing", func() {
			orch.Update(true, at(3))
			Expect(orch.State().Active).To(BeTrue())
			for _, f := range fixed {
				Expect(f.Resets).To(Equal(1))
			}
		})

		It("invokes only configured controllers, once each", func() {
			orch.Update(true, at(10))
			Expect(fixed[lateral.PID].Calls).To(Equal(1))
			Expect(fixed[lateral.INDI].Calls).To(Equal(1))
			Expect(fixed[lateral.LQR].Calls).To(Equal(1))
			Expect(fixed[lateral.Torque].Calls).To(BeZero())
		})
	})

	Context("speed zoned [5, 15] with pid, indi, lqr", func() {
		It("selects pid at low speed", func() {
			cmd := orch.Update(true, at(3))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.PID))
			Expect(cmd.Torque).To(Equal(0.1))
		})

		It("keeps the candidate closest to the previous output across the boundary", func() {
			orch.Update(true, at(3))
			cmd := orch.Update(true, at(10))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.PID))

			fixed[lateral.PID].Set(-0.5)
			cmd = orch.Update(true, at(10))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.INDI))
			Expect(orch.State().PreviousOutputTorque).To(Equal(0.4))
		})

		It("applies the closeness rule between indi and lqr above the second breakpoint", func() {
			orch.Update(true, at(3))
			cmd := orch.Update(true, at(20))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.LQR))

			fixed[lateral.LQR].Set(0.9)
			cmd = orch.Update(true, at(20))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.INDI))
		})

		It("clamps candidates beyond the actuator limit", func() {
			fixed[lateral.PID].Set(5)
			cmd := orch.Update(true, at(1))
			Expect(cmd.Torque).To(Equal(lateral.SteerMax))
		})
	})

	Context("when deactivated mid-drive", func() {
		It("outputs exactly zero and re-engages from a zero previous output", func() {
			orch.Update(true, at(3))
			orch.Update(true, at(10))
			Expect(orch.State().PreviousOutputTorque).To(Equal(0.1))

			cmd := orch.Update(false, at(10))
			Expect(cmd.Torque).To(Equal(0.0))
			Expect(cmd.DesiredAngleDeg).To(Equal(0.0))
			Expect(cmd.Diagnostics.Active).To(BeFalse())
			Expect(orch.State().PreviousOutputTorque).To(BeZero())

			// Re-engaging inside the boundary zone compares against 0, so
			// the candidate nearest zero wins.
			fixed[lateral.PID].Set(0.3)
			fixed[lateral.INDI].Set(0.05)
			cmd = orch.Update(true, at(10))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.INDI))
		})
	})

	Context("when a controller fails", func() {
		It("substitutes a zero candidate and carries on", func() {
			fixed[lateral.INDI].Err = errors.New("observer diverged")
			orch.Update(true, at(3))
			cmd := orch.Update(true, at(10))
			Expect(cmd.Diagnostics.Active).To(BeTrue())
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.PID))

			fixed[lateral.PID].Set(0.8)
			cmd = orch.Update(true, at(10))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.INDI))
			Expect(cmd.Torque).To(BeZero())
		})
	})

	Context("with display speed units", func() {
		BeforeEach(func() {
			var err error
			cfg = config.GetPreset("speed-display")
			Expect(cfg).NotTo(BeNil())
			orch, err = arbiter.NewWithBank(cfg, bank, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reads breakpoints as kph by default", func() {
			// 30 kph is 8.33 m/s.
			// Zone 1 compares torque (-0.7) with lqr (0.25) against 0.
			cmd := orch.Update(true, at(9))
			Expect(cmd.Diagnostics.Selected).To(Equal(lateral.LQR))
		})

		It("reads breakpoints as mph when the cycle says so", func() {
			// 30 mph is 13.4 m/s.
			in := at(9)
			in.State.IsMph = true
			orch.Update(true, in)
			Expect(orch.State().Selected).To(Equal(lateral.Torque))
		})
	})

	Context("with an invalid configuration", func() {
		It("refuses to build", func() {
			cfg.Speed.Breakpoints = []float64{15, 5}
			_, err := arbiter.NewWithBank(cfg, bank, nil)
			Expect(err).To(MatchError(lateral.ErrInvalidBreakpoints))
		})

		It("refuses a bank missing a configured controller", func() {
			bank[lateral.LQR] = nil
			_, err := arbiter.NewWithBank(cfg, bank, nil)
			Expect(errors.Is(err, lateral.ErrNotConfigured)).To(BeTrue())
		})
	})
})

var _ = Describe("Orchestrator with real controllers", func() {
	drive := func(orch *arbiter.Orchestrator, n int) []float64 {
		out := make([]float64, n)
		in := lateral.Input{
			State:   lateral.VehicleState{SpeedMPS: 12},
			Targets: lateral.Targets{Curvature: 0.003, CurvatureRate: 0.0002},
		}
		for i := range out {
			in.State.SteeringAngleDeg = float64(i) * 0.02
			cmd := orch.Update(true, in)
			out[i] = cmd.Torque
			in.Aux.LastTorque = cmd.Torque
		}
		return out
	}

	DescribeTable("re-engagement matches a fresh instance",
		func(preset string) {
			cfg := config.GetPreset(preset)
			Expect(cfg).NotTo(BeNil())

			used, err := arbiter.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())
			drive(used, 150)
			used.Update(false, at(12))

			fresh, err := arbiter.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(drive(used, 150)).To(Equal(drive(fresh, 150)))
		},
		Entry("speed", "speed"),
		Entry("angle", "angle"),
		Entry("weighted", "weighted"),
		Entry("torque", "torque"),
	)

	It("keeps every output within the actuator limit", func() {
		cfg := config.DefaultConfig()
		orch, err := arbiter.New(cfg, nil)
		Expect(err).NotTo(HaveOccurred())
		in := lateral.Input{Targets: lateral.Targets{Curvature: 0.2}}
		for i := 0; i < 500; i++ {
			in.State.SpeedMPS = float64(i % 35)
			cmd := orch.Update(true, in)
			Expect(cmd.Torque).To(BeNumerically("<=", lateral.SteerMax))
			Expect(cmd.Torque).To(BeNumerically(">=", -lateral.SteerMax))
		}
	})
})
