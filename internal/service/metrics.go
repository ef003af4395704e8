package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings written in PENDING state",
		},
		[]string{"subject"},
	)
	groupsConfirmedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_groups_confirmed_total",
			Help: "Total number of slot groups promoted to CONFIRMED",
		},
		[]string{"subject"},
	)
)
