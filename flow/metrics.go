package flow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkersGauge is the number of running processes per stage.
	WorkersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "go_csp_workers",
		Help: "The number of running processes for stage",
	}, []string{"name", "type"})

	// ElementsCounter counts elements received ("in") and sent ("out") per stage.
	ElementsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "go_csp_elements_total",
		Help: "The number of elements received and sent by stage",
	}, []string{"name", "type", "direction"})
)
