// Package blockscheduler implements the C8 peg-driven scheduler:
// edge-triggered on mainchain-tip advance, never a polling ticker. The
// two-way-peg pipeline calls directly into OnMainchainTipAdvance as each
// tip advance is observed.
package blockscheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/coinshift-network/coinshiftd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type Option func(*service)

// WithStartHeight seeds the highest height already processed, so a restart
// does not re-invoke the handler for a tip advance it already saw.
func WithStartHeight(height uint32) Option {
	return func(s *service) {
		s.lastHeight = height
		s.seeded = true
	}
}

type service struct {
	lock       sync.Mutex
	lastHeight uint32
	seeded     bool
	handler    ports.PegAdvanceFunc
}

func NewScheduler(opts ...Option) ports.SchedulerService {
	svc := &service{}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *service) SetPegAdvanceHandler(fn ports.PegAdvanceFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.handler = fn
}

// OnMainchainTipAdvance fires the installed handler exactly once per call,
// rejecting a height at or behind the last one seen so a caller cannot
// double-trigger C7 for the same tip advance.
func (s *service) OnMainchainTipAdvance(ctx context.Context, height uint32) error {
	s.lock.Lock()
	handler := s.handler
	if s.seeded && height <= s.lastHeight {
		s.lock.Unlock()
		log.WithField("height", height).WithField("last_height", s.lastHeight).
			Debug("ignoring non-advancing tip notification")
		return nil
	}
	s.lastHeight = height
	s.seeded = true
	s.lock.Unlock()

	if handler == nil {
		return fmt.Errorf("no peg advance handler installed")
	}

	log.WithField("height", height).Debug("mainchain tip advance, invoking peg handler")
	return handler(ctx, height)
}

// RollbackTo resets the gate to height, so a subsequent OnMainchainTipAdvance
// at height or below is no longer rejected as non-advancing.
func (s *service) RollbackTo(height uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lastHeight = height
	s.seeded = true
}
