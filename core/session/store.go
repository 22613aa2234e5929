// Package session defines the hand-off contract for finalized charging
// sessions. The engine emits one record per closed session; sinks forward it
// to the external persistence collaborator.
package session

import (
	"context"
	"sync"

	"github.com/kilianp07/solarfleet/core/model"
)

// Sink receives finalized session records.
type Sink interface {
	Record(ctx context.Context, rec model.FinalizedSession) error
	Close() error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) Record(context.Context, model.FinalizedSession) error { return nil }
func (NopSink) Close() error                                         { return nil }

// MemoryStore keeps finalized sessions in memory. Used in tests and as the
// default sink when no persistent backend is configured.
type MemoryStore struct {
	mu   sync.Mutex
	recs []model.FinalizedSession
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Record(_ context.Context, rec model.FinalizedSession) error {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
	return nil
}

// List returns a copy of all recorded sessions in emission order.
func (s *MemoryStore) List() []model.FinalizedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FinalizedSession, len(s.recs))
	copy(out, s.recs)
	return out
}

func (s *MemoryStore) Close() error { return nil }
