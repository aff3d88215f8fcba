// Package metrics exposes the relay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MatchesCreated prometheus.Counter
	ActiveRooms    prometheus.Gauge
	FramesRelayed  prometheus.Counter
	DecodeErrors   prometheus.Counter
	ResultsStored  prometheus.Counter
}

// New registers all collectors with reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MatchesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "battleboats_matches_created_total",
			Help: "Matches created through the HTTP API.",
		}),
		ActiveRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "battleboats_active_rooms",
			Help: "Rooms currently registered in the hub.",
		}),
		FramesRelayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "battleboats_frames_relayed_total",
			Help: "Complete protocol frames observed passing through rooms.",
		}),
		DecodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "battleboats_decode_errors_total",
			Help: "Malformed frames observed passing through rooms.",
		}),
		ResultsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "battleboats_results_stored_total",
			Help: "Match results persisted to the store.",
		}),
	}
}
