package repository

import (
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-parking-payments/app/entity"
)

// PendingPaymentRepository keeps in-flight purchases in process memory. Every instance
// holds its own entries; nothing survives a restart.
type PendingPaymentRepository struct {
	mu    sync.RWMutex
	items map[string]entity.PendingPayment
}

func NewPendingPaymentRepository() *PendingPaymentRepository {
	return &PendingPaymentRepository{items: map[string]entity.PendingPayment{}}
}

// Put inserts or overwrites the record stored under key.
func (r *PendingPaymentRepository) Put(key string, payment *entity.PendingPayment) {
	if payment == nil {
		return
	}
	item := *payment
	item.Key = key

	r.mu.Lock()
	r.items[key] = item
	r.mu.Unlock()
}

func (r *PendingPaymentRepository) Get(key string) (*entity.PendingPayment, bool) {
	r.mu.RLock()
	item, ok := r.items[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &item, true
}

func (r *PendingPaymentRepository) Remove(key string) {
	r.mu.Lock()
	delete(r.items, key)
	r.mu.Unlock()
}

// Take removes and returns the record under key. Of several concurrent callers for the
// same key only one receives the record.
func (r *PendingPaymentRepository) Take(key string) (*entity.PendingPayment, bool) {
	r.mu.Lock()
	item, ok := r.items[key]
	if ok {
		delete(r.items, key)
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return &item, true
}

// ExpireBefore removes every record created before cutoff and returns the removed records.
func (r *PendingPaymentRepository) ExpireBefore(cutoff time.Time) []*entity.PendingPayment {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]*entity.PendingPayment, 0)
	for key, item := range r.items {
		if !item.CreatedAt.Before(cutoff) {
			continue
		}
		copyItem := item
		expired = append(expired, &copyItem)
		delete(r.items, key)
	}
	return expired
}

func (r *PendingPaymentRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
