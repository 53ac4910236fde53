package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kyrios"

var (
	RegistrationsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "admitted_total",
		Help:      "Registrations admitted to the pending store.",
	})

	RegistrationsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "confirmed_total",
		Help:      "OTP confirmation attempts by result.",
	}, []string{"result"})

	PendingExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "pending_expired_total",
		Help:      "Pending registrations removed after their lifetime ran out.",
	})

	PendingEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "registration",
		Name:      "pending_entries",
		Help:      "Pending registrations held by the in-memory store.",
	})

	ReferralLinks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "referral",
		Name:      "links_total",
		Help:      "Referral entries appended by stage.",
	}, []string{"stage"})
)
