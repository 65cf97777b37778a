package state

import (
	"context"
	"log/slog"
	"sync"

	"saldo/internal/storage"
)

// Persister is the store subscriber that re-serializes the full snapshot
// to the document store after every mutation. A failed write is logged
// and remembered, not retried: in-memory state stays correct and the
// next successful mutation overwrites the documents anyway.
type Persister struct {
	docs   storage.DocumentStore
	logger *slog.Logger

	mu      sync.Mutex
	lastErr error
}

func NewPersister(docs storage.DocumentStore, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{docs: docs, logger: logger}
}

// Listener returns the subscription hook to register on the store.
func (p *Persister) Listener() Listener {
	return func(ev Event, snap Snapshot) {
		switch ev.Op {
		case OpLoad:
			// Nothing changed; the snapshot came from storage.
			return
		case OpReset:
			// Reset already deleted both keys; writing would recreate them.
			return
		}
		p.save(ev, snap)
	}
}

func (p *Persister) save(ev Event, snap Snapshot) {
	ctx := context.Background()

	stateDoc, err := snap.marshalState()
	if err == nil {
		err = p.docs.Put(ctx, storage.StateKey, stateDoc)
	}
	if err != nil {
		p.fail(ev, err)
		return
	}

	colorDoc, err := snap.marshalColors()
	if err == nil {
		err = p.docs.Put(ctx, storage.ColorKey, colorDoc)
	}
	if err != nil {
		p.fail(ev, err)
		return
	}

	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()
}

func (p *Persister) fail(ev Event, err error) {
	p.logger.Error("Failed to persist state, unsaved changes will be lost on reload",
		"op", string(ev.Op), "error", err)
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// LastError reports the most recent persistence failure, if the latest
// write failed. Surfaced as a warning to the user, never as a hard error.
func (p *Persister) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
