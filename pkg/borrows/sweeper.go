package borrows

import (
	"context"
	"time"

	"github.com/librakeep/librakeep/pkg/interfaces"
)

// Sweeper runs the overdue sweep on a fixed interval until its context is
// cancelled. Reads stay correct without it; the sweeper only keeps stored
// statuses and fines from drifting too far behind observed time.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   interfaces.Logger
}

// NewSweeper creates a new background sweeper
func NewSweeper(service *Service, interval time.Duration, logger interfaces.Logger) *Sweeper {
	return &Sweeper{service: service, interval: interval, logger: logger}
}

// Run blocks, sweeping once per interval, until ctx is cancelled. A sweep
// failure is logged and the next tick tries again.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("overdue sweeper started", map[string]interface{}{"interval": w.interval.String()})

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("overdue sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.service.RunOverdueSweep(ctx); err != nil {
				w.logger.Error("overdue sweep failed", err)
			}
		}
	}
}
