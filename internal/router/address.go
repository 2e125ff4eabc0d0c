package router

import "sync"

// Address is the single mutable location fragment shared with the
// outside world.
type Address interface {
	// Fragment returns the current fragment, without "#".
	Fragment() string
	// SetFragment changes the fragment. Watchers are notified only when
	// the value actually changes.
	SetFragment(f string)
	// Watch registers fn to be called with the new value after every
	// change, whoever made it.
	Watch(fn func(fragment string))
}

// MemoryAddress is an in-process Address. Watchers run synchronously on
// the goroutine that changed the fragment, after the lock is released.
//
// Thread-safety: safe for concurrent use.
type MemoryAddress struct {
	mu       sync.Mutex
	fragment string
	watchers []func(string)
	changes  []string
}

var _ Address = (*MemoryAddress)(nil)

// NewMemoryAddress returns an address holding initial.
func NewMemoryAddress(initial string) *MemoryAddress {
	return &MemoryAddress{fragment: initial}
}

func (a *MemoryAddress) Fragment() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fragment
}

func (a *MemoryAddress) SetFragment(f string) {
	a.mu.Lock()
	if f == a.fragment {
		a.mu.Unlock()
		return
	}
	a.fragment = f
	a.changes = append(a.changes, f)
	watchers := append(([]func(string))(nil), a.watchers...)
	a.mu.Unlock()

	for _, fn := range watchers {
		fn(f)
	}
}

func (a *MemoryAddress) Watch(fn func(fragment string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchers = append(a.watchers, fn)
}

// Changes returns every value the fragment took, in order.
func (a *MemoryAddress) Changes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.changes...)
}
