// Package metrics defines and registers the custom Prometheus metrics of the
// project registry. It is the single source of truth for metric names,
// labels, and help strings.
//
// All vectors are registered with the default registry at package init via
// promauto; /metrics exposes them next to the HTTP metrics from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "project_registry"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "duplicate", "invalid_credentials", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// TokenRejectionsTotal counts requests rejected by the bearer-token gate.
// Label:
//   - reason: "missing", "malformed" or "invalid"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid bearer token.",
	},
	[]string{"reason"},
)

// AccessDeniedTotal counts authenticated requests refused for lack of role.
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests denied by the role gate.",
	},
	[]string{"role"},
)

// ── Project metrics ───────────────────────────────────────────────────────────

// ProjectMutationsTotal counts successful project writes.
// Label:
//   - action: "create", "update" or "delete"
var ProjectMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_mutations_total",
		Help:      "Total number of successful project mutations, by action.",
	},
	[]string{"action"},
)

// ProjectCacheTotal counts project list cache lookups.
// Label:
//   - result: "hit", "miss", "stale" (write skipped after an invalidation) or "error"
var ProjectCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_cache_total",
		Help:      "Total number of project list cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by delivery outcome.
// Label:
//   - result: "published", "failed" or "dropped" (queue full or closed)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of project audit events, by delivery outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending events in each dispatcher worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditPublishDuration measures how long delivering one event takes.
var AuditPublishDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_publish_duration_seconds",
		Help:      "Duration of a single audit event publish.",
		Buckets:   prometheus.DefBuckets,
	},
)
