package pid_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dkrol/pidlab/pid"
)

var _ = Describe("Controller", func() {
	var (
		clk *pid.ManualClock
		c   *pid.Controller
	)

	newController := func(kp, ti, td float64) {
		clk = pid.NewManualClock()
		c = pid.NewWithClock(kp, ti, td, clk.Now)
	}

	step := func(err float64, dt time.Duration) float64 {
		clk.Advance(dt)
		return c.Compute(err)
	}

	Describe("proportional-only mode", func() {
		BeforeEach(func() {
			newController(2.0, 0, 0)
		})

		It("outputs Kp times the error on every call", func() {
			Expect(step(3.0, time.Second)).To(Equal(6.0))
			Expect(step(-1.5, time.Second)).To(Equal(-3.0))
			Expect(step(0.0, time.Second)).To(Equal(0.0))
		})

		It("keeps the integral and derivative terms at zero", func() {
			step(3.0, time.Second)
			step(3.0, time.Second)
			Expect(c.IntegralTerm()).To(BeZero())
			Expect(c.DerivativeTerm()).To(BeZero())
		})

		It("supports a negative gain for inverse-acting plants", func() {
			newController(-2.0, 0, 0)
			Expect(step(3.0, time.Second)).To(Equal(-6.0))
		})
	})

	Describe("integral action", func() {
		BeforeEach(func() {
			newController(1.0, 1.0, 0)
		})

		It("does not integrate on the first sample", func() {
			Expect(step(1.0, time.Second)).To(Equal(1.0))
			Expect(c.IntegralTerm()).To(BeZero())
		})

		It("accumulates by the trapezoidal rule from the second sample on", func() {
			step(1.0, time.Second)
			// Kp*(e+ePrev)*dt/(2*Ti) = 1*(1+1)*1/2 = 1 per second of constant unit error.
			step(1.0, time.Second)
			Expect(c.IntegralTerm()).To(BeNumerically("~", 1.0, 1e-9))
			step(1.0, time.Second)
			Expect(c.IntegralTerm()).To(BeNumerically("~", 2.0, 1e-9))
		})

		It("moves the accumulator in the direction of the error's sign", func() {
			step(1.0, time.Second)
			prev := c.IntegralTerm()
			for i := 0; i < 5; i++ {
				step(1.0, 100*time.Millisecond)
				Expect(c.IntegralTerm()).To(BeNumerically(">", prev))
				prev = c.IntegralTerm()
			}
			for i := 0; i < 5; i++ {
				step(-1.0, 100*time.Millisecond)
				Expect(c.IntegralTerm()).To(BeNumerically("<", prev))
				prev = c.IntegralTerm()
			}
		})
	})

	Describe("derivative action", func() {
		BeforeEach(func() {
			newController(1.0, 0, 2.0)
		})

		It("is zero on the first sample", func() {
			step(1.0, time.Second)
			Expect(c.DerivativeTerm()).To(BeZero())
		})

		It("approximates Kp*Td*de/dt", func() {
			step(0.0, time.Second)
			// de/dt = 1/0.5 = 2, so D = 1*2*2 = 4.
			step(1.0, 500*time.Millisecond)
			Expect(c.DerivativeTerm()).To(BeNumerically("~", 4.0, 1e-9))
		})
	})

	Describe("output limiting", func() {
		BeforeEach(func() {
			newController(1.0, 0, 0)
		})

		It("clamps the output into the band", func() {
			Expect(c.SetOutputLimit(true, 0, 10)).To(BeTrue())
			Expect(step(20.0, time.Second)).To(Equal(10.0))
			Expect(step(-5.0, time.Second)).To(Equal(0.0))
			Expect(step(7.0, time.Second)).To(Equal(7.0))
		})

		It("rejects a degenerate band", func() {
			Expect(c.SetOutputLimit(true, 5, 5)).To(BeFalse())
			Expect(c.OutputLimitEnabled()).To(BeFalse())
			Expect(step(20.0, time.Second)).To(Equal(20.0))
		})

		It("rejects an inverted band", func() {
			Expect(c.SetOutputLimit(true, 10, -10)).To(BeFalse())
			Expect(c.OutputLimitEnabled()).To(BeFalse())
		})

		It("cannot be re-enabled before a band was ever set", func() {
			Expect(c.EnableOutputLimit(true)).To(BeFalse())
			Expect(c.OutputLimitEnabled()).To(BeFalse())
		})

		It("re-enables with the stored band", func() {
			c.SetOutputLimit(false, 0, 10)
			Expect(c.OutputLimitEnabled()).To(BeFalse())
			Expect(c.EnableOutputLimit(true)).To(BeTrue())
			Expect(step(20.0, time.Second)).To(Equal(10.0))
			Expect(c.EnableOutputLimit(false)).To(BeFalse())
			Expect(step(20.0, time.Second)).To(Equal(20.0))
		})

		It("survives a gain change", func() {
			c.SetOutputLimit(true, 0, 10)
			c.Configure(2.0, 0, 0)
			Expect(c.OutputLimitEnabled()).To(BeTrue())
			Expect(step(20.0, time.Second)).To(Equal(10.0))
		})
	})

	Describe("integral limiting", func() {
		BeforeEach(func() {
			newController(1.0, 0.1, 0)
		})

		It("requires a usable output band", func() {
			Expect(c.SetIntegralLimit(true)).To(BeFalse())
			c.SetOutputLimit(true, -1, 1)
			Expect(c.SetIntegralLimit(true)).To(BeTrue())
			Expect(c.IntegralLimitEnabled()).To(BeTrue())
		})

		It("clamps the accumulator into the output band", func() {
			c.SetOutputLimit(true, -1, 1)
			c.SetIntegralLimit(true)
			step(10.0, time.Second)
			step(10.0, time.Second)
			step(10.0, time.Second)
			Expect(c.IntegralTerm()).To(Equal(1.0))
		})
	})

	Describe("integral conditioning", func() {
		BeforeEach(func() {
			newController(1.0, 1.0, 0)
		})

		It("requires output limiting", func() {
			Expect(c.SetIntegralConditioning(true)).To(BeFalse())
			c.SetOutputLimit(true, -10, 10)
			Expect(c.SetIntegralConditioning(true)).To(BeTrue())
			Expect(c.IntegralConditioningEnabled()).To(BeTrue())
		})

		It("freezes the accumulator while the output is saturated", func() {
			c.SetOutputLimit(true, -10, 10)
			c.SetIntegralConditioning(true)

			Expect(step(100.0, time.Second)).To(Equal(10.0))
			frozen := c.IntegralTerm()

			Expect(step(100.0, time.Second)).To(Equal(10.0))
			Expect(c.IntegralTerm()).To(Equal(frozen))
		})

		It("resumes integrating once the output leaves the band", func() {
			c.SetOutputLimit(true, -10, 10)
			c.SetIntegralConditioning(true)

			step(100.0, time.Second)
			step(100.0, time.Second)
			step(1.0, 10*time.Millisecond)
			before := c.IntegralTerm()
			Expect(before).To(BeNumerically(">", 0))
			step(1.0, 10*time.Millisecond)
			Expect(c.IntegralTerm()).To(BeNumerically(">", before))
		})

		It("winds up without conditioning", func() {
			c.SetOutputLimit(true, -10, 10)

			step(100.0, time.Second)
			Expect(c.IntegralTerm()).To(BeZero())
			step(100.0, time.Second)
			Expect(c.IntegralTerm()).To(BeNumerically("~", 100.0, 1e-9))
		})
	})

	Describe("TurnOff", func() {
		It("makes the next Compute behave like a first call", func() {
			newController(1.0, 1.0, 1.0)
			step(2.0, time.Second)
			step(3.0, time.Second)

			c.TurnOff()
			Expect(c.IntegralTerm()).To(BeZero())
			Expect(c.Output()).To(BeZero())

			out := step(2.0, time.Hour)
			Expect(out).To(Equal(2.0))
			Expect(c.DerivativeTerm()).To(BeZero())
			Expect(c.IntegralTerm()).To(BeZero())
		})

		It("keeps gains and limit configuration", func() {
			newController(3.0, 0, 0)
			c.SetOutputLimit(true, 0, 5)
			c.TurnOff()
			Expect(c.OutputLimitEnabled()).To(BeTrue())
			Expect(step(10.0, time.Second)).To(Equal(5.0))
		})
	})

	Describe("Configure", func() {
		It("resets the running state", func() {
			newController(1.0, 1.0, 1.0)
			step(2.0, time.Second)
			step(3.0, time.Second)
			Expect(c.IntegralTerm()).NotTo(BeZero())

			c.Configure(1.0, 1.0, 1.0)
			Expect(c.IntegralTerm()).To(BeZero())

			step(2.0, time.Second)
			Expect(c.DerivativeTerm()).To(BeZero())
			Expect(c.IntegralTerm()).To(BeZero())
		})
	})

	Describe("clock edge cases", func() {
		It("skips derivative and integral when no time has elapsed", func() {
			newController(1.0, 1.0, 1.0)
			step(1.0, time.Second)
			before := c.IntegralTerm()

			out := c.Compute(2.0) // same tick, dt == 0
			Expect(math.IsNaN(out)).To(BeFalse())
			Expect(math.IsInf(out, 0)).To(BeFalse())
			Expect(c.DerivativeTerm()).To(BeZero())
			Expect(c.IntegralTerm()).To(Equal(before))
		})
	})

	Describe("accessors", func() {
		It("are pure", func() {
			newController(1.0, 1.0, 1.0)
			step(2.0, time.Second)
			step(3.0, time.Second)

			Expect(c.Output()).To(Equal(c.Output()))
			Expect(c.ProportionalTerm()).To(Equal(c.ProportionalTerm()))
			Expect(c.IntegralTerm()).To(Equal(c.IntegralTerm()))
			Expect(c.DerivativeTerm()).To(Equal(c.DerivativeTerm()))
			Expect(c.ProportionalTerm()).To(Equal(3.0))
		})
	})
})
