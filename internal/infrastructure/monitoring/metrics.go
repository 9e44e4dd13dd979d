package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	BidAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bid_attempts_total",
			Help: "Total number of bid attempts",
		},
	)

	BidAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bid_accepted_total",
			Help: "Total number of accepted bids",
		},
	)

	BidRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_rejected_total",
			Help: "Total number of rejected bids",
		},
		[]string{"reason"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_settlements_total",
			Help: "Total number of auction settlements by outcome",
		},
		[]string{"outcome"},
	)

	ArmedSettlements = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auction_armed_settlements",
			Help: "Number of outstanding settlement timers",
		},
	)

	ActiveAuctions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auctions_active",
			Help: "Number of listings currently in auction",
		},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"command"},
	)
)

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		DBQueryDuration.WithLabelValues(queryType, table).Observe(time.Since(start).Seconds())
	}
}

func RecordBidAttempt() {
	BidAttemptsTotal.Inc()
}

func RecordBidAccepted() {
	BidAcceptedTotal.Inc()
}

func RecordBidRejected(reason string) {
	BidRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordSettlement(outcome string) {
	SettlementsTotal.WithLabelValues(outcome).Inc()
}

func UpdateArmedSettlements(count int) {
	ArmedSettlements.Set(float64(count))
}

func UpdateActiveAuctions(count int) {
	ActiveAuctions.Set(float64(count))
}
