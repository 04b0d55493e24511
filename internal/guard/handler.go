package guard

import (
	"context"
	"fmt"

	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// SafeHandler wraps an event handler so errors and panics stop at the wrapper.
// Faults are logged and swallowed; the caller's dispatch loop keeps running.
// A nil handler yields a no-op. A nil interface event is ignored.
func SafeHandler[E any](ctx context.Context, L log.Logger, name string, h func(E) error) func(E) {
	if L == nil {
		L = log.Nop()
	}
	return func(ev E) {
		if h == nil || any(ev) == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				L.Error(ctx, xerrors.WithStack(err), "event handler panicked", "handler", name)
			}
		}()
		if err := h(ev); err != nil {
			L.Error(ctx, err, "event handler failed", "handler", name)
		}
	}
}
