package web

import (
	"context"
	"sync"
	"time"

	"bookkeeping/internal/core"
)

const pendingTTL = 15 * time.Minute

// pendingPayment is an AI payment proposal held server-side until the user
// confirms or cancels it.
type pendingPayment struct {
	Proposal  core.PaymentProposal
	UserID    int
	CreatedAt time.Time
}

// pendingStore is a thread-safe in-memory store with TTL expiry.
type pendingStore struct {
	mu       sync.Mutex
	payments map[string]pendingPayment
	now      func() time.Time
}

func newPendingStore() *pendingStore {
	return &pendingStore{payments: make(map[string]pendingPayment), now: time.Now}
}

func (s *pendingStore) put(token string, p pendingPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[token] = p
}

// take removes and returns the payment for token. Expired entries are dropped.
func (s *pendingStore) take(token string) (pendingPayment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[token]
	if !ok {
		return pendingPayment{}, false
	}
	delete(s.payments, token)
	if s.now().Sub(p.CreatedAt) > pendingTTL {
		return pendingPayment{}, false
	}
	return p, true
}

func (s *pendingStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, p := range s.payments {
		if s.now().Sub(p.CreatedAt) > pendingTTL {
			delete(s.payments, token)
		}
	}
}

// startPurge starts a background goroutine that evicts expired entries every 5 minutes.
func (s *pendingStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purge()
			}
		}
	}()
}
