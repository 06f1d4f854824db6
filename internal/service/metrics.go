package service

import (
	"errors"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var presetOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "preset_operations_total",
		Help: "Total number of preset operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// observePresetOp records one preset operation outcome. Conflicts get their
// own label so retry pressure is visible separately from plain errors.
func observePresetOp(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, common.ErrVersionConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	presetOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
