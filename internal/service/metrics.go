package service

import "github.com/prometheus/client_golang/prometheus"

var (
	accountInconsistencies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdesk_account_inconsistencies_total",
			Help: "Accounts left with auth store and profile store out of sync, needing manual repair",
		},
		[]string{"op"},
	)
	accountCompensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdesk_account_compensations_total",
			Help: "Compensating actions run after a partial account write",
		},
		[]string{"op", "result"},
	)
)

func init() { prometheus.MustRegister(accountInconsistencies, accountCompensations) }
