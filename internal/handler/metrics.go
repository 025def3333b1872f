package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_login_attempts_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	accountLockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_account_lockouts_total",
		Help: "Total number of accounts locked after repeated failures.",
	})

	passwordResetRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_password_reset_requests_total",
		Help: "Total number of password reset requests accepted.",
	})

	passwordResetsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_password_resets_completed_total",
		Help: "Total number of completed password resets.",
	})

	chatConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forum_chat_connections_active",
		Help: "Number of currently open chat WebSocket connections.",
	})
)
