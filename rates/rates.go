// Package rates exposes the market-data collaborator to the send flow
// as a read-only exchange-rate snapshot. Fetching happens elsewhere;
// this subsystem only ever reads the latest value.
package rates

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Source supplies the current fiat-per-coin exchange rate. The boolean
// is false while no rate has been delivered yet.
type Source interface {
	Rate() (decimal.Decimal, bool)
}

// Snapshot is a Source fed by an external market-data collaborator.
// Reads never block on the feeder.
type Snapshot struct {
	mu    sync.RWMutex
	rate  decimal.Decimal
	valid bool
}

// NewSnapshot returns an empty snapshot with no rate available.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Set replaces the current rate. A non-positive rate clears it.
func (s *Snapshot) Set(rate decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rate.Sign() <= 0 {
		s.rate = decimal.Zero
		s.valid = false
		return
	}
	s.rate = rate
	s.valid = true
}

// Rate returns the latest rate and whether one is available.
func (s *Snapshot) Rate() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rate, s.valid
}
