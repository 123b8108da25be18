package user

import (
	"context"
	"log/slog"
	"sync"
)

// QueryFilter adjusts a listing query before it reaches the store.
type QueryFilter func(q *UserQuery)

// PreInsertFilter runs before a user is inserted or updated. It may
// mutate the mutation record or veto the operation by returning an
// error, which short-circuits like a validation failure.
type PreInsertFilter func(ctx context.Context, params *UserParams, isUpdate bool) error

// PostInsertListener is notified after a user has been inserted or
// updated. Listener panics are recovered and logged; by the time a
// listener runs the mutation has already committed.
type PostInsertListener func(ctx context.Context, u User, params UserParams, isUpdate bool)

// Hooks is the callback registration point for collaborators that need
// to adjust queries, veto mutations or observe committed ones.
type Hooks struct {
	mu          sync.RWMutex
	queryFilter []QueryFilter
	preInsert   []PreInsertFilter
	postInsert  []PostInsertListener
}

func NewHooks() *Hooks {
	return &Hooks{}
}

// OnQuery registers a listing query filter.
func (h *Hooks) OnQuery(f QueryFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryFilter = append(h.queryFilter, f)
}

// OnPreInsert registers a pre-insert filter.
func (h *Hooks) OnPreInsert(f PreInsertFilter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preInsert = append(h.preInsert, f)
}

// OnPostInsert registers a post-insert listener.
func (h *Hooks) OnPostInsert(f PostInsertListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postInsert = append(h.postInsert, f)
}

func (h *Hooks) applyQuery(q *UserQuery) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, f := range h.queryFilter {
		f(q)
	}
}

func (h *Hooks) applyPreInsert(ctx context.Context, params *UserParams, isUpdate bool) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, f := range h.preInsert {
		if err := f(ctx, params, isUpdate); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) notifyPostInsert(ctx context.Context, u User, params UserParams, isUpdate bool) {
	h.mu.RLock()
	listeners := append([]PostInsertListener(nil), h.postInsert...)
	h.mu.RUnlock()

	for _, f := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("post-insert listener panicked", "panic", rec, "userId", u.ID)
				}
			}()
			f(ctx, u, params, isUpdate)
		}()
	}
}
