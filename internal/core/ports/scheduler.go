package ports

import "context"

// PegAdvanceFunc is invoked by the scheduler exactly once per sidechain
// mainchain-tip advance, inside the same write transaction that applies the
// two-way-peg data. height is the sidechain height at which
// the tip advance was observed.
type PegAdvanceFunc func(ctx context.Context, height uint32) error

// SchedulerService is the C8 peg-driven scheduler contract: edge-triggered
// on mainchain-tip advance, never a polling ticker.
type SchedulerService interface {
	// OnMainchainTipAdvance must be called by the two-way-peg pipeline
	// (an external collaborator) once per tip advance,
	// before that advance's write transaction commits.
	OnMainchainTipAdvance(ctx context.Context, height uint32) error
	// SetPegAdvanceHandler installs the handler invoked by
	// OnMainchainTipAdvance. Must be called once during wiring.
	SetPegAdvanceHandler(fn PegAdvanceFunc)
	// RollbackTo resets the monotonic height gate to height, as if the
	// highest tip advance ever seen was height. Called when a mainchain-tip-
	// advance block is disconnected, so a reorg to the same or a lower
	// height is not silently swallowed by the gate that guards
	// OnMainchainTipAdvance against double-triggering C7.
	RollbackTo(height uint32)
}
