package testhelper

import (
	"context"
	"testing"
	"time"
)

// Context returns a context bounded by the test's deadline, so that a
// test blocked on a wait that never completes fails instead of hanging.
func Context(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	deadline, found := t.Deadline()
	if !found {
		deadline = time.Now().Add(30 * time.Second)
	}

	return context.WithDeadline(ctx, deadline)
}
