package circuitbreaker_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/keepalive/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var registry *circuitbreaker.Registry

	BeforeEach(func() {
		registry = circuitbreaker.NewRegistry(2)
	})

	Describe("GetBreaker", func() {
		It("should return the same breaker for the same URL", func() {
			cb1 := registry.GetBreaker("https://a.example.com")
			cb2 := registry.GetBreaker("https://a.example.com")
			Expect(cb1).To(BeIdenticalTo(cb2))
		})

		It("should return different breakers for different URLs", func() {
			cb1 := registry.GetBreaker("https://a.example.com")
			cb2 := registry.GetBreaker("https://b.example.com")
			Expect(cb1).NotTo(BeIdenticalTo(cb2))
		})

		It("should use the registry threshold", func() {
			cb := registry.GetBreaker("https://a.example.com")
			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should be safe for concurrent use", func() {
			var wg sync.WaitGroup
			seen := make([]*circuitbreaker.CircuitBreaker, 20)
			for i := range seen {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					seen[i] = registry.GetBreaker("https://a.example.com")
				}(i)
			}
			wg.Wait()

			for _, cb := range seen {
				Expect(cb).To(BeIdenticalTo(seen[0]))
			}
		})
	})

	Describe("Retain", func() {
		It("should keep only the current URL", func() {
			registry.GetBreaker("https://old.example.com")
			registry.GetBreaker("https://new.example.com")

			registry.Retain("https://new.example.com")

			Expect(registry.Stats()).To(HaveLen(1))
			Expect(registry.Stats()).To(HaveKey("https://new.example.com"))
		})
	})

	Describe("Stats", func() {
		It("should report state and consecutive failures per URL", func() {
			cb := registry.GetBreaker("https://a.example.com")
			cb.RecordFailure()
			cb.RecordFailure()
			registry.GetBreaker("https://b.example.com")

			stats := registry.Stats()
			Expect(stats).To(HaveLen(2))
			Expect(stats["https://a.example.com"].State).To(Equal(circuitbreaker.StateOpen))
			Expect(stats["https://a.example.com"].Failures).To(Equal(2))
			Expect(stats["https://b.example.com"].State).To(Equal(circuitbreaker.StateClosed))
		})
	})
})
