package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	udpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teamconnect",
			Subsystem: "udp",
			Name:      "requests_total",
			Help:      "Total client datagrams handled.",
		},
		[]string{"node", "type", "outcome"},
	)
	udpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teamconnect",
			Subsystem: "udp",
			Name:      "request_duration_seconds",
			Help:      "Datagram handling duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "type", "outcome"},
	)
	udpMalformed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teamconnect",
			Subsystem: "udp",
			Name:      "malformed_total",
			Help:      "Datagrams that failed wire decoding.",
		},
		[]string{"node"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "teamconnect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "teamconnect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(udpRequests, udpDuration, udpMalformed, httpRequests, httpDuration)
	})
}

func RecordDatagram(node, msgType, outcome string, duration time.Duration) {
	RegisterMetrics()
	udpRequests.WithLabelValues(node, msgType, outcome).Inc()
	udpDuration.WithLabelValues(node, msgType, outcome).Observe(duration.Seconds())
}

func RecordMalformed(node string) {
	RegisterMetrics()
	udpMalformed.WithLabelValues(node).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
