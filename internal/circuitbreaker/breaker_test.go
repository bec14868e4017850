package circuitbreaker_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/keepalive/internal/circuitbreaker"
)

var _ = Describe("CircuitBreaker", func() {
	var cb *circuitbreaker.CircuitBreaker

	trip := func() {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordFailure()
	}

	BeforeEach(func() {
		cb = circuitbreaker.NewCircuitBreaker(3)
	})

	Context("when CLOSED", func() {
		It("should start closed with no failures", func() {
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Status().Failures).To(BeZero())
			Expect(cb.Status().LastFailure.IsZero()).To(BeTrue())
		})

		It("should stay closed below the threshold", func() {
			cb.RecordFailure()
			cb.RecordFailure()

			st := cb.Status()
			Expect(st.State).To(Equal(circuitbreaker.StateClosed))
			Expect(st.Failures).To(Equal(2))
			Expect(st.LastFailure).To(BeTemporally("~", time.Now(), time.Second))
		})

		It("should open at the threshold", func() {
			trip()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should reset the failure count on success", func() {
			cb.RecordFailure()
			cb.RecordFailure()
			cb.RecordSuccess()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Status().Failures).To(Equal(1))
		})
	})

	Context("when OPEN", func() {
		BeforeEach(trip)

		It("should keep counting failures", func() {
			cb.RecordFailure()
			Expect(cb.Status().Failures).To(Equal(4))
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should close on the first success", func() {
			cb.RecordSuccess()
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(cb.Status().Failures).To(BeZero())
		})
	})

	It("should treat a non-positive threshold as one", func() {
		cb = circuitbreaker.NewCircuitBreaker(0)
		cb.RecordFailure()
		Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
	})

	Describe("State", func() {
		It("should render readable names", func() {
			Expect(circuitbreaker.StateClosed.String()).To(Equal("CLOSED"))
			Expect(circuitbreaker.StateOpen.String()).To(Equal("OPEN"))
			Expect(circuitbreaker.State(42).String()).To(Equal("UNKNOWN"))
		})

		It("should marshal as text in JSON", func() {
			b, err := json.Marshal(map[string]circuitbreaker.State{"u": circuitbreaker.StateOpen})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`{"u":"OPEN"}`))
		})
	})
})
