package offline

import (
	"sync"
)

// Hook function types for assembly events
type (
	// AssembledHook is called after a reach is assembled
	AssembledHook func(a *Assembly)

	// UnavailableHook is called when a reach's FLPE outputs are incomplete
	// and its record holds no data
	UnavailableHook func(reachID int64)

	// FailedHook is called when a reach cannot be assembled
	FailedHook func(reachID int64, err error)
)

// Hooks registers event callbacks. Callbacks run on the goroutine that
// assembled the reach, so batch callbacks may run concurrently.
type Hooks interface {
	OnAssembled(AssembledHook)
	OnUnavailable(UnavailableHook)
	OnFailed(FailedHook)
}

// hooks manages event callbacks
type hooks struct {
	mu            sync.RWMutex
	onAssembled   []AssembledHook
	onUnavailable []UnavailableHook
	onFailed      []FailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnAssembled registers a callback for assembled reaches
func (h *hooks) OnAssembled(fn AssembledHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAssembled = append(h.onAssembled, fn)
}

// OnUnavailable registers a callback for reaches without FLPE data
func (h *hooks) OnUnavailable(fn UnavailableHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUnavailable = append(h.onUnavailable, fn)
}

// OnFailed registers a callback for reaches that failed
func (h *hooks) OnFailed(fn FailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailed = append(h.onFailed, fn)
}

// trigger fires the hooks matching the outcome of one reach
func (h *hooks) trigger(reachID int64, a *Assembly, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err != nil {
		for _, hook := range h.onFailed {
			hook(reachID, err)
		}
		return
	}
	if !a.Available() {
		for _, hook := range h.onUnavailable {
			hook(reachID)
		}
	}
	for _, hook := range h.onAssembled {
		hook(a)
	}
}
