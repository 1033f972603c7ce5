// internal/ledger/saga.go
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// saga collects compensating actions for writes that already succeeded so a
// later failure can undo them in reverse order.
type saga struct {
	name  string
	log   *logrus.Entry
	steps []compensation
}

type compensation struct {
	name string
	undo func(ctx context.Context) error
}

func newSaga(name string, log *logrus.Entry) *saga {
	return &saga{name: name, log: log.WithField("saga", name)}
}

func (s *saga) compensate(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, undo: undo})
}

// abort runs every compensation and returns cause joined with any
// compensation failure.
func (s *saga) abort(ctx context.Context, cause error) error {
	// Undo even when the caller's context is already done.
	ctx = context.WithoutCancel(ctx)

	errs := []error{cause}
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(ctx); err != nil {
			s.log.WithError(err).WithField("step", step.name).Error("Compensation failed, data may be inconsistent")
			errs = append(errs, fmt.Errorf("undo %s: %w", step.name, err))
			continue
		}
		s.log.WithField("step", step.name).Warn("Compensated")
	}
	s.steps = nil
	return errors.Join(errs...)
}
