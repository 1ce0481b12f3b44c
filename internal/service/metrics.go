package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbrne_filter_mutations_total",
		Help: "Filter store mutations by operation",
	}, []string{"op"})

	filterNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cbrne_filter_notifications_total",
		Help: "Snapshots delivered to the owning view's change callback",
	})

	filterSessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cbrne_filter_sessions_open",
		Help: "Dashboard view filter sessions currently open",
	})

	filterSessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cbrne_filter_sessions_expired_total",
		Help: "Filter sessions closed after sitting idle",
	})

	recordsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cbrne_records_ingested_total",
		Help: "Monitoring records stored",
	})

	recordsVisibleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cbrne_records_visible_total",
		Help: "Records returned after applying a session's filters",
	})
)

// mutation ops, used as the op label
const (
	opToggle     = "toggle"
	opDateRange  = "date_range"
	opQuickRange = "quick_range"
	opClearAll   = "clear_all"
)
