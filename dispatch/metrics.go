package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsRegisterOnce sync.Once

	messagesDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "dispatch",
		Name:      "messages_dispatched_total",
		Help:      "Number of messages successfully constructed and handed off to workers.",
	})
	messagesHandled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sysrepo",
		Subsystem: "dispatch",
		Name:      "messages_handled_total",
		Help:      "Number of messages processed and released by a worker.",
	})
)

// RegisterMetrics registers this package's prometheus collectors with
// reg. Safe to call multiple times.
func RegisterMetrics(reg prometheus.Registerer) {
	metricsRegisterOnce.Do(func() {
		reg.MustRegister(messagesDispatched, messagesHandled)
	})
}
