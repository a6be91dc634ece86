package service

import (
	"errors"

	"predman/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var TaskMoves = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "board_task_moves_total",
		Help: "Task reorder requests by outcome",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(TaskMoves)
}

func moveResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		return "rejected"
	default:
		return "error"
	}
}
