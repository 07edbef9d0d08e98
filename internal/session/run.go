package session

import (
	"context"
	"time"

	"github.com/roach88/rotnet/internal/game"
)

// Run drives the session from the calling goroutine until ctx is cancelled,
// inputs is closed, or the session fails.
//
// Every tick it polls the transport; between ticks it submits whatever
// arrives on inputs. This is the only place Submit and Poll meet, so they
// never overlap.
func (s *Session) Run(ctx context.Context, tick time.Duration, inputs <-chan game.Input) error {
	s.logger.Info("session starting", "phase", s.phase, "tick", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopping: context cancelled")
			return ctx.Err()

		case in, ok := <-inputs:
			if !ok {
				s.logger.Info("session stopping: input closed")
				return nil
			}
			if err := s.Submit(ctx, in); err != nil {
				return err
			}

		case <-ticker.C:
			if err := s.Poll(ctx); err != nil {
				return err
			}
		}
	}
}
