package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequests counts served requests by route, method and status
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "investboard_http_requests_total",
		Help: "Total number of HTTP requests served",
	},
	[]string{"route", "method", "status"},
)

// HTTPLatency records latency distribution for HTTP requests
var HTTPLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "investboard_http_request_duration_seconds",
		Help:    "Latency in seconds to serve HTTP requests",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)

// Engine metrics
var (
	// SimulationsTotal counts simulations by outcome (ok, no_rate, audit_failed)
	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "investboard_simulations_total",
			Help: "Total number of investment simulations",
		},
		[]string{"outcome"},
	)

	// InvestmentsRecorded counts recorded investments by product tier
	InvestmentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "investboard_investments_recorded_total",
			Help: "Total number of investments recorded",
		},
		[]string{"tier"},
	)

	// RiskAdjustments counts ceiling adjustments by direction (up, down, none)
	RiskAdjustments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "investboard_risk_adjustments_total",
			Help: "Total number of client risk ceiling evaluations",
		},
		[]string{"direction"},
	)

	// AuditFailures counts simulation audit records that could not be stored
	AuditFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "investboard_simulation_audit_failures_total",
			Help: "Simulation results returned without an audit record",
		},
	)

	// PersistenceConflicts counts optimistic concurrency failures
	PersistenceConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "investboard_persistence_conflicts_total",
			Help: "Client ceiling updates rejected by the version check",
		},
	)
)

// Database connection pool metrics
var (
	DBOpenConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "investboard_db_open_connections",
			Help: "Number of open connections in the DB pool",
		},
		[]string{"db"},
	)

	DBIdleConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "investboard_db_idle_connections",
			Help: "Number of idle connections in the DB pool",
		},
		[]string{"db"},
	)

	DBInUseConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "investboard_db_in_use_connections",
			Help: "Number of in-use connections in the DB pool",
		},
		[]string{"db"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency)
	prometheus.MustRegister(SimulationsTotal, InvestmentsRecorded, RiskAdjustments, AuditFailures, PersistenceConflicts)
	prometheus.MustRegister(DBOpenConns, DBIdleConns, DBInUseConns)
}
