package signal

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Hub is a registry of named signals sharing a common value type and
// configuration. Signals are created on first use; firing a name nobody
// has connected to is a no-op, like firing an empty signal.
type Hub[T any] struct {
	mu      sync.Mutex
	opts    []Option
	signals map[string]*Signal[T]
}

// NewHub returns an empty hub. The given options are applied to every
// signal the hub creates, with the signal's name appended.
func NewHub[T any](opts ...Option) *Hub[T] {
	return &Hub[T]{
		opts:    opts,
		signals: make(map[string]*Signal[T]),
	}
}

// Signal returns the signal registered under name, creating it if
// necessary.
func (h *Hub[T]) Signal(name string) *Signal[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, found := h.signals[name]; found {
		return s
	}

	s := New[T](append(slices.Clone(h.opts), WithName(name))...)
	h.signals[name] = s
	return s
}

// Lookup returns the signal registered under name, without creating it.
func (h *Hub[T]) Lookup(name string) (*Signal[T], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, found := h.signals[name]
	if !found {
		var known []string
		for key := range h.signals {
			known = append(known, key)
		}
		sort.Strings(known)
		return nil, NotFoundError{
			Requested: name,
			Known:     known,
		}
	}
	return s, nil
}

// Fire delivers v on the signal registered under name.
func (h *Hub[T]) Fire(name string, v T) {
	h.Signal(name).Fire(v)
}

// Names returns the names of all signals the hub has created, sorted.
func (h *Hub[T]) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.signals))
	for name := range h.signals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every signal in the hub. The hub keeps the closed
// signals registered so outstanding references keep resolving to them.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.signals {
		s.Close()
	}
}

// NotFoundError is returned by Lookup for a name no signal is
// registered under.
type NotFoundError struct {
	Requested string
	Known     []string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("signal `%s` not found. Known signals: %v", e.Requested, e.Known)
}
