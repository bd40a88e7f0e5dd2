// Package telemetry holds the Prometheus metrics shared by the bot.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytbot_events_total",
		Help: "Inbound chat events by kind",
	}, []string{"kind"})

	FlowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytbot_flows_total",
		Help: "Completed flows by flow and outcome",
	}, []string{"flow", "outcome"})

	FlowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytbot_flow_duration_seconds",
		Help:    "Flow duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})

	GateDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytbot_gate_denied_total",
		Help: "Events stopped by an admission gate",
	}, []string{"gate"})

	ContentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytbot_content_requests_total",
		Help: "Content API calls by api and outcome",
	}, []string{"api", "outcome"})

	ContentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytbot_content_request_duration_seconds",
		Help:    "Content API call duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"api"})

	MessengerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytbot_messenger_calls_total",
		Help: "Bot API calls by method and outcome",
	}, []string{"method", "outcome"})

	InflightEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytbot_inflight_events",
		Help: "Events currently being handled",
	})
)

// Outcome label for an error result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSince records the seconds elapsed since start.
func ObserveSince(obs prometheus.Observer, start time.Time) {
	if obs != nil {
		obs.Observe(time.Since(start).Seconds())
	}
}
