package store

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/replikativ/konserve-lmdb/lib/codec"
)

// WriteHook is a caller-supplied observer. The store stores and hands out
// hooks but never invokes them; wiring them into write paths is up to the
// application.
type WriteHook func(key any, meta codec.Map, value any)

// Hooks is the concurrent table of named write hooks. Reads and replacements
// of individual entries are atomic.
type Hooks struct {
	m *xsync.MapOf[codec.Symbol, WriteHook]
}

func newHooks() *Hooks {
	return &Hooks{m: xsync.NewMapOf[codec.Symbol, WriteHook]()}
}

// Get returns the hook registered under name.
func (h *Hooks) Get(name codec.Symbol) (WriteHook, bool) {
	return h.m.Load(name)
}

// Set registers or replaces the hook under name. A nil hook removes the
// entry.
func (h *Hooks) Set(name codec.Symbol, hook WriteHook) {
	if hook == nil {
		h.m.Delete(name)
		return
	}
	h.m.Store(name, hook)
}

// Range iterates over all registered hooks.
func (h *Hooks) Range(fn func(name codec.Symbol, hook WriteHook) bool) {
	h.m.Range(fn)
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	return h.m.Size()
}
