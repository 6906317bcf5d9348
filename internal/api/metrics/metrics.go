// Package metrics defines and registers all custom Prometheus metrics for
// the training platform API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pawacademy"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "deactivated", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests rejected by the gate chain.
// Label:
//   - reason: "unauthenticated", "expired_token", "invalid_token", "deactivated", "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authorization gates, by reason.",
	},
	[]string{"reason"},
)

// ── Invite metrics ────────────────────────────────────────────────────────────

// InvitesCreatedTotal counts invites issued by admins.
// Label:
//   - role: "trainer" or "admin"
var InvitesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_created_total",
		Help:      "Total number of staff invites created, by invited role.",
	},
	[]string{"role"},
)

// InvitesRedeemedTotal counts successful invite redemptions.
var InvitesRedeemedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_redeemed_total",
		Help:      "Total number of invites successfully redeemed.",
	},
)

// InviteConflictsTotal counts redemption attempts that lost to an earlier
// redemption or hit a terminal invite.
var InviteConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invite_conflicts_total",
		Help:      "Total number of invite redemptions rejected as already used.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsSentTotal counts outbound notification attempts.
// Labels:
//   - kind: template kind ("invite", "welcome", "admin_new_staff")
//   - result: "ok" or "error"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notification send attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks pending messages per dispatcher worker.
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
