package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reorderWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkshelf",
		Subsystem: "reorder",
		Name:      "writes_total",
		Help:      "Order updates written by reorder operations.",
	}, []string{"entity"})

	catalogInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "linkshelf",
		Subsystem: "catalog",
		Name:      "invalidations_total",
		Help:      "Catalog invalidations by source.",
	}, []string{"source"})
)
