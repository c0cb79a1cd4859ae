package placement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricApplications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placement_applications_total",
		Help: "Applications created through the direct path.",
	})

	metricDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_application_decisions_total",
		Help: "Company decisions on pending applications.",
	}, []string{"decision"})

	metricInterviews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placement_interviews_scheduled_total",
		Help: "Interviews booked into the placement window.",
	})

	metricQuotaClosures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placement_quota_closures_total",
		Help: "Pending applications auto-rejected because a company reached its quota.",
	})

	metricTokenEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_token_entries_total",
		Help: "Token ledger entries appended, by kind.",
	}, []string{"kind"})
)
