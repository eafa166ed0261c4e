package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/domain/interfaces"
)

// engineRef counts the requests running on one engine. Once it is retired
// and the count reaches zero, release runs exactly once.
type engineRef struct {
	engine interfaces.Engine

	mu      sync.Mutex
	active  int
	retired bool
	release func()
}

func (r *engineRef) enter() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return false
	}
	r.active++
	return true
}

func (r *engineRef) leave() {
	r.mu.Lock()
	r.active--
	var release func()
	if r.active == 0 && r.retired {
		release, r.release = r.release, nil
	}
	r.mu.Unlock()
	if release != nil {
		release()
	}
}

func (r *engineRef) retire(release func()) {
	r.mu.Lock()
	r.retired = true
	if r.active > 0 {
		r.release = release
		release = nil
	}
	r.mu.Unlock()
	if release != nil {
		release()
	}
}

// Holder is an Engine whose target can be replaced while requests are in
// flight. Each Execute runs entirely on the engine current at its start.
type Holder struct {
	current atomic.Pointer[engineRef]
}

// NewHolder returns a holder delegating to e
func NewHolder(e interfaces.Engine) *Holder {
	h := &Holder{}
	h.current.Store(&engineRef{engine: e})
	return h
}

// Swap installs e and returns the previous engine. release, if not nil,
// runs once the last request still executing on the previous engine has
// returned; immediately when none are.
func (h *Holder) Swap(e interfaces.Engine, release func()) interfaces.Engine {
	old := h.current.Swap(&engineRef{engine: e})
	if old == nil {
		if release != nil {
			release()
		}
		return nil
	}
	old.retire(release)
	return old.engine
}

// Current returns the engine requests are routed to
func (h *Holder) Current() interfaces.Engine {
	if ref := h.current.Load(); ref != nil {
		return ref.engine
	}
	return nil
}

func (h *Holder) Execute(ctx context.Context, input domain.ExecutionInput) domain.ExecutionResult {
	ref := h.acquire()
	defer ref.leave()
	return ref.engine.Execute(ctx, input)
}

// acquire pins the current engine. A ref retired between the load and the
// pin is skipped in favour of its replacement.
func (h *Holder) acquire() *engineRef {
	for {
		ref := h.current.Load()
		if ref.enter() {
			return ref
		}
	}
}
