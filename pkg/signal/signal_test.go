package signal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/signalkit/signalkit/internal/testhelper"
)

func TestFireDeliversInConnectionOrder(t *testing.T) {
	t.Parallel()

	s := New[string]()

	var got []string
	s.Connect(func(v string) { got = append(got, "first:"+v) })
	s.Connect(func(v string) { got = append(got, "second:"+v) })
	s.Connect(func(v string) { got = append(got, "third:"+v) })

	s.Fire("Blue")

	require.Equal(t, []string{"first:Blue", "second:Blue", "third:Blue"}, got)

	s.Fire("Purple")

	require.Len(t, got, 6)
	require.Equal(t, []string{"first:Purple", "second:Purple", "third:Purple"}, got[3:])
}

func TestFireForwardsStructValues(t *testing.T) {
	t.Parallel()

	type event struct {
		Name  string
		Count int
	}

	s := New[event]()

	var got event
	s.Connect(func(v event) { got = v })

	s.Fire(event{Name: "Blue", Count: 7})

	require.Equal(t, event{Name: "Blue", Count: 7}, got)
}

func TestFireWithoutHandlers(t *testing.T) {
	t.Parallel()

	s := New[int]()

	require.NotPanics(t, func() { s.Fire(42) })

	// An empty fire must not release waiters.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	go s.Fire(1)

	_, err := s.WaitContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnectDuringFire(t *testing.T) {
	t.Parallel()

	s := New[int]()

	var calls int
	s.Connect(func(int) {
		calls++
		// A handler connected mid-round joins the next round only.
		s.Connect(func(int) { calls += 100 })
	})

	s.Fire(0)
	require.Equal(t, 1, calls)

	calls = 0
	s.Fire(0)
	require.Equal(t, 101, calls)
}

func TestHandlerPanicShortCircuitsRound(t *testing.T) {
	t.Parallel()

	s := New[int]()

	var invoked []string
	s.Connect(func(int) { invoked = append(invoked, "first") })
	s.Connect(func(int) { panic("boom") })
	s.Connect(func(int) { invoked = append(invoked, "third") })

	require.PanicsWithValue(t, "boom", func() { s.Fire(0) })
	require.Equal(t, []string{"first"}, invoked)
}

func TestWaitMeasuresElapsedTime(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	s := New[string](WithClock(mock))
	s.Connect(func(string) {})

	go func() {
		// Give the waiter time to arm before advancing the clock.
		time.Sleep(100 * time.Millisecond)
		mock.Add(5 * time.Second)
		s.Fire("tick")
	}()

	ctx, cancel := testhelper.Context(context.Background(), t)
	defer cancel()

	elapsed, err := s.WaitContext(ctx)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, elapsed)
}

func TestWaitReleasedByConcurrentFire(t *testing.T) {
	t.Parallel()

	const delay = 250 * time.Millisecond

	s := New[string]()
	s.Connect(func(string) {})

	go func() {
		time.Sleep(delay)
		s.Fire("Blue")
	}()

	elapsed := s.Wait()

	require.GreaterOrEqual(t, elapsed, delay)
	require.Less(t, elapsed, 10*delay)
}

func TestMultipleWaitersReleasedBySingleFire(t *testing.T) {
	t.Parallel()

	const waiters = 8

	s := New[int]()
	s.Connect(func(int) {})

	ctx, cancel := testhelper.Context(context.Background(), t)
	defer cancel()

	var armed sync.WaitGroup
	armed.Add(waiters)

	var g errgroup.Group
	for i := 0; i < waiters; i++ {
		g.Go(func() error {
			armed.Done()
			_, err := s.WaitContext(ctx)
			return err
		})
	}

	armed.Wait()
	time.Sleep(100 * time.Millisecond) // let every waiter block
	s.Fire(1)

	require.NoError(t, g.Wait())
}

func TestWaitContextCancelled(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Connect(func(int) {})

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := s.WaitContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	t.Parallel()

	s := New[string]()

	var calls int
	c1 := s.Connect(func(string) { calls++ })
	c2 := s.Connect(func(string) { calls++ })

	s.Close()

	require.False(t, c1.Connected())
	require.False(t, c2.Connected())
	require.Zero(t, s.Len())

	s.Fire("Blue")
	require.Zero(t, calls)

	// Disconnect after close stays a silent no-op.
	require.NotPanics(t, c1.Disconnect)

	// Close is idempotent.
	require.NotPanics(t, s.Close)
}

func TestConnectAfterClose(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Close()

	conn := s.Connect(func(int) { t.Error("handler invoked on closed signal") })

	require.False(t, conn.Connected())
	require.Zero(t, s.Len())

	s.Fire(1)
}

func TestConcurrentConnectFireDisconnect(t *testing.T) {
	t.Parallel()

	s := New[int]()

	var g errgroup.Group

	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				conn := s.Connect(func(int) {})
				conn.Disconnect()
			}
			return nil
		})
	}

	g.Go(func() error {
		for j := 0; j < 100; j++ {
			s.Fire(1)
		}
		return nil
	})

	require.NoError(t, g.Wait())
}
