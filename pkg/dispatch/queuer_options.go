package dispatch

import (
	"log/slog"
	"time"
)

// QueuerOption is a functional option for configuring a Queuer
type QueuerOption func(*queuerOptions)

type queuerOptions struct {
	interval time.Duration
	logger   *slog.Logger
}

// WithRunInterval sets how often the queuer sweeps for eligible tasks
func WithRunInterval(d time.Duration) QueuerOption {
	return func(o *queuerOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithQueuerLogger sets the logger for the queuer
func WithQueuerLogger(l *slog.Logger) QueuerOption {
	return func(o *queuerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
