package service

import (
	"context"
	"sync"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// Editor is an inline edit buffer for one row at a time. A failed submit
// keeps the buffer so the user can correct it.
type Editor[F any] struct {
	submit func(ctx context.Context, id int, form F) error

	mu      sync.Mutex
	editing bool
	id      int
	buf     F
}

func NewEditor[F any](submit func(ctx context.Context, id int, form F) error) *Editor[F] {
	return &Editor[F]{submit: submit}
}

// Begin snapshots a row into the buffer, replacing any edit in progress.
func (e *Editor[F]) Begin(id int, form F) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing, e.id, e.buf = true, id, form
}

// Update mutates the buffer in place.
func (e *Editor[F]) Update(fn func(*F)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing {
		fn(&e.buf)
	}
}

func (e *Editor[F]) Buffer() (int, F, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id, e.buf, e.editing
}

func (e *Editor[F]) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing
}

func (e *Editor[F]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero F
	e.editing, e.id, e.buf = false, 0, zero
}

// Submit sends the buffer and leaves edit mode on success.
func (e *Editor[F]) Submit(ctx context.Context) error {
	if !e.mu.TryLock() {
		return domain.ErrSubmissionInFlight
	}
	defer e.mu.Unlock()
	if !e.editing {
		return domain.NewValidationError("id", "nothing is being edited")
	}
	if err := e.submit(ctx, e.id, e.buf); err != nil {
		return err
	}
	var zero F
	e.editing, e.id, e.buf = false, 0, zero
	return nil
}
