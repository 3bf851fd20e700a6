// Package signal provides an in-process, thread-aware signal primitive.
//
// Handlers connect to a signal and receive every value fired on it,
// synchronously and in connection order. A caller can block until the
// next fire completes and measure how long it waited. Signals carry a
// single value type; events with several values use a struct type.
package signal

import (
	"context"
	"sync"
	"time"
)

// Handler is a callback invoked with the value passed to Fire.
type Handler[T any] func(T)

// Signal fans out fired values to all currently connected handlers.
//
// All methods are safe for concurrent use. Fire runs handlers on the
// calling goroutine; a handler is free to connect or disconnect
// handlers on the same signal while it runs.
type Signal[T any] struct {
	opts options

	// regMu guards the handler slots and connection handles.
	regMu  sync.Mutex
	seq    uint64
	order  []uint64
	slots  map[uint64]Handler[T]
	conns  map[uint64]*Connection[T]
	closed bool

	// mu guards ready, the rendezvous predicate between Fire and Wait.
	mu    sync.Mutex
	cond  *sync.Cond
	ready bool
}

// New returns a signal carrying values of type T.
func New[T any](opts ...Option) *Signal[T] {
	s := &Signal[T]{
		opts:  defaultOptions(),
		slots: make(map[uint64]Handler[T]),
		conns: make(map[uint64]*Connection[T]),
	}
	s.opts.apply(opts...)
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Connect registers fn to be invoked on every subsequent Fire and
// returns the connection handle tracking that registration.
//
// Each registration is keyed by a token that stays valid no matter how
// many other connections come and go, so connections may be
// disconnected in any order. The signal retains the returned handle and
// invalidates it when the signal is closed.
//
// Connecting to a closed signal returns an already-disconnected handle.
func (s *Signal[T]) Connect(fn Handler[T]) *Connection[T] {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	token := s.seq
	s.seq++

	conn := &Connection[T]{signal: s, token: token}
	conn.connected.Store(true)

	if s.closed {
		conn.connected.Store(false)
		return conn
	}

	s.slots[token] = fn
	s.order = append(s.order, token)
	s.conns[token] = conn

	s.opts.logger.Debug().
		Str("signal", s.opts.name).
		Uint64("token", token).
		Int("handlers", len(s.order)).
		Msg("handler connected")
	s.setConnectionsGauge(len(s.order))

	return conn
}

// Fire delivers v to every connected handler, in connection order, on
// the calling goroutine. After the last handler returns, any goroutines
// blocked in Wait or WaitContext are released.
//
// Firing a signal with no handlers is a no-op: waiters are not
// released. A panicking handler propagates to the caller and
// short-circuits delivery to the remaining handlers in this round.
// Handlers are snapshotted when Fire starts; a connection disconnected
// while the round is in flight may still observe it.
func (s *Signal[T]) Fire(v T) {
	s.regMu.Lock()
	handlers := make([]Handler[T], 0, len(s.order))
	for _, token := range s.order {
		handlers = append(handlers, s.slots[token])
	}
	s.regMu.Unlock()

	if len(handlers) == 0 {
		return
	}

	s.opts.logger.Debug().
		Str("signal", s.opts.name).
		Int("handlers", len(handlers)).
		Msg("firing")

	for _, fn := range handlers {
		fn(v)
	}

	if m := s.opts.metrics; m != nil {
		m.FiresTotal.WithLabelValues(s.opts.name).Inc()
		m.HandlerInvocations.WithLabelValues(s.opts.name).Add(float64(len(handlers)))
	}

	s.mu.Lock()
	s.ready = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Wait blocks the calling goroutine until the next Fire with at least
// one handler completes, and returns the elapsed wall-clock time.
//
// The wait is armed when Wait is called: fires that completed earlier
// are not observed. Multiple concurrent waiters are all released by a
// single Fire, each measuring from its own arm point. Wait has no
// timeout; use WaitContext to bound it.
func (s *Signal[T]) Wait() time.Duration {
	s.mu.Lock()
	s.ready = false
	start := s.opts.clock.Now()
	for !s.ready {
		s.cond.Wait()
	}
	elapsed := s.opts.clock.Now().Sub(start)
	s.mu.Unlock()

	s.observeWait(elapsed)

	return elapsed
}

// WaitContext is Wait with a context: it additionally unblocks when ctx
// is cancelled, returning the elapsed time and ctx.Err().
func (s *Signal[T]) WaitContext(ctx context.Context) (time.Duration, error) {
	s.mu.Lock()
	s.ready = false
	start := s.opts.clock.Now()

	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	for !s.ready && ctx.Err() == nil {
		s.cond.Wait()
	}
	elapsed := s.opts.clock.Now().Sub(start)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return elapsed, err
	}

	s.observeWait(elapsed)

	return elapsed, nil
}

// Close disconnects every connection the signal has handed out and
// drops all handlers. Subsequent fires are no-ops and subsequent
// connects return dead handles. Close is idempotent.
//
// Close does not release goroutines blocked in Wait; they only return
// on a fire. Callers that close signals with waiters outstanding should
// use WaitContext.
func (s *Signal[T]) Close() {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for _, conn := range s.conns {
		conn.connected.Store(false)
	}
	s.slots = make(map[uint64]Handler[T])
	s.conns = make(map[uint64]*Connection[T])
	s.order = nil

	s.opts.logger.Debug().Str("signal", s.opts.name).Msg("signal closed")
	s.setConnectionsGauge(0)
}

// Len returns the number of currently connected handlers.
func (s *Signal[T]) Len() int {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	return len(s.order)
}

// disconnect removes the handler registered under token. It is a no-op
// if the token is no longer present, which happens when the signal has
// been closed between the connection's CAS and this call.
func (s *Signal[T]) disconnect(token uint64) {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	if _, found := s.slots[token]; !found {
		return
	}

	delete(s.slots, token)
	delete(s.conns, token)
	for i, t := range s.order {
		if t == token {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.opts.logger.Debug().
		Str("signal", s.opts.name).
		Uint64("token", token).
		Int("handlers", len(s.order)).
		Msg("handler disconnected")
	s.setConnectionsGauge(len(s.order))
}

func (s *Signal[T]) setConnectionsGauge(n int) {
	if m := s.opts.metrics; m != nil {
		m.Connections.WithLabelValues(s.opts.name).Set(float64(n))
	}
}

func (s *Signal[T]) observeWait(elapsed time.Duration) {
	if m := s.opts.metrics; m != nil {
		m.WaitDuration.WithLabelValues(s.opts.name).Observe(elapsed.Seconds())
	}
}
