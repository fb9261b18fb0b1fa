// app/metrics.go
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 借还与检测任务的业务计数器，/metrics 暴露
var (
	LoansCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_loans_created_total",
		Help: "Loans successfully created.",
	})
	LoansReturned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_loans_returned_total",
		Help: "Loans registered as returned.",
	})
	LoansLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_loans_lost_total",
		Help: "Loans registered as lost.",
	})
	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_loan_stock_rejections_total",
		Help: "Loan requests rejected for insufficient stock.",
	})
	StaleActivitiesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_stale_activities_found_total",
		Help: "Stale activities found across detector runs.",
	})
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "club_notifications_sent_total",
		Help: "Notifications written to the sink.",
	})
)
