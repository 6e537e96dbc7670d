package batch

import (
	"context"
	"sync/atomic"
)

// CancelToken is checked cooperatively before each segment dispatch.
// In-flight provider calls are never force-aborted; their results are
// discarded once the token trips.
type CancelToken interface {
	IsCancelled() bool
}

// FlagToken is a CancelToken flipped by calling Cancel.
type FlagToken struct {
	cancelled atomic.Bool
}

func NewFlagToken() *FlagToken { return &FlagToken{} }

func (t *FlagToken) Cancel() { t.cancelled.Store(true) }

func (t *FlagToken) IsCancelled() bool { return t.cancelled.Load() }

// ContextToken adapts a context's cancellation onto the token interface
// so the job queue's cancel flow reaches the orchestrator.
type ContextToken struct {
	Ctx context.Context
}

func (t ContextToken) IsCancelled() bool { return t.Ctx.Err() != nil }
