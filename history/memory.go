package history

import (
	"context"
	"sync"

	"github.com/BlixtWallet/noah-sub000/send"
)

// MemoryStore keeps payment records in memory. Useful for tests and
// for ephemeral wallets.
type MemoryStore struct {
	mu   sync.Mutex
	recs []*send.PaymentResultRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record appends one payment record.
func (s *MemoryStore) Record(_ context.Context,
	rec *send.PaymentResultRecord) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.recs = append(s.recs, &clone)
	return nil
}

// List returns all records, most recent first.
func (s *MemoryStore) List(_ context.Context) (
	[]*send.PaymentResultRecord, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*send.PaymentResultRecord, 0, len(s.recs))
	for i := len(s.recs) - 1; i >= 0; i-- {
		clone := *s.recs[i]
		out = append(out, &clone)
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
