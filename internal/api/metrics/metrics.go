// Package metrics defines and registers all custom Prometheus metrics for the
// ScreenGrabber account API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "screengrabber"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication operations.
// Labels:
//   - operation: "register", "login", "federated_login", "logout",
//     "forgot_password" or "reset_password"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── License metrics ───────────────────────────────────────────────────────────

// LicenseValidationsTotal counts license key checks.
// Labels:
//   - result: "valid" or "invalid"
//   - caller: "authenticated" or "anonymous"
var LicenseValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_validations_total",
		Help:      "Total number of license validations, by result and caller.",
	},
	[]string{"result", "caller"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts password reset notifications.
// Label:
//   - result: "delivered", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of reset notifications, by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures a single delivery attempt.
var NotificationDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of a reset notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
)
