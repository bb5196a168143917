package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_notifications_sent_total",
		Help: "Total number of alert notifications delivered",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpline_notifications_failed_total",
		Help: "Total number of alert notifications that could not be delivered",
	})
)
