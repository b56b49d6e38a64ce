package workout

import (
	"sync"
)

// DraftStore is the persistence the engine needs: one serialized blob per
// key with get/put/delete semantics. *store.Store satisfies it.
type DraftStore interface {
	GetDraft(key string) (string, error)
	PutDraft(key, value string) error
	DeleteDraft(key string) error
}

// draftOp is one queued persistence operation. A nil data means delete.
type draftOp struct {
	data *string
}

// draftWriter serializes draft writes on a single goroutine with a
// single-slot queue: enqueueing replaces any not-yet-written operation,
// so the last write always reflects the latest state and a stale write
// can never clobber a fresh one. Failures are logged, never surfaced.
type draftWriter struct {
	store DraftStore
	key   string
	logf  func(format string, v ...any)

	mu      sync.Mutex
	cond    *sync.Cond
	pending *draftOp
	idle    bool
	closed  bool
}

func newDraftWriter(store DraftStore, key string, logf func(format string, v ...any)) *draftWriter {
	w := &draftWriter{
		store: store,
		key:   key,
		logf:  logf,
		idle:  true,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *draftWriter) run() {
	w.mu.Lock()
	for {
		for w.pending == nil {
			if w.closed {
				w.idle = true
				w.cond.Broadcast()
				w.mu.Unlock()
				return
			}
			w.idle = true
			w.cond.Broadcast()
			w.cond.Wait()
		}

		op := *w.pending
		w.pending = nil
		w.idle = false
		w.mu.Unlock()

		w.apply(op)

		w.mu.Lock()
	}
}

func (w *draftWriter) apply(op draftOp) {
	var err error
	if op.data == nil {
		err = w.store.DeleteDraft(w.key)
	} else {
		err = w.store.PutDraft(w.key, *op.data)
	}
	if err != nil {
		w.logf("workout: persisting draft: %v", err)
	}
}

// save queues a write of the serialized state, replacing any queued op
func (w *draftWriter) save(data string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &draftOp{data: &data}
	w.idle = false
	w.cond.Broadcast()
}

// remove queues a deletion of the draft, replacing any queued op
func (w *draftWriter) remove() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &draftOp{}
	w.idle = false
	w.cond.Broadcast()
}

// flush blocks until every queued operation has been applied
func (w *draftWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.pending != nil || !w.idle {
		w.cond.Wait()
	}
}

// close flushes and stops the writer goroutine
func (w *draftWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	w.flush()
}
