package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. Used by tests and local runs.
type MemoryStore struct {
	mu                   sync.Mutex
	payments             map[string]Payment
	orders               map[string]Order
	ordersByMerchant     map[string]string
	registrations        map[string]Registration
	registrationsByOrder map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		payments:             make(map[string]Payment),
		orders:               make(map[string]Order),
		ordersByMerchant:     make(map[string]string),
		registrations:        make(map[string]Registration),
		registrationsByOrder: make(map[string]string),
	}
}

func (s *MemoryStore) InsertPayment(ctx context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID]; exists {
		return ErrDuplicate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.payments[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := s.ordersByMerchant[o.MerchantOrderID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	s.orders[o.ID] = cloneOrder(*o)
	s.ordersByMerchant[o.MerchantOrderID] = o.ID
	return nil
}

func (s *MemoryStore) FindOrderByMerchantID(ctx context.Context, merchantOrderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.ordersByMerchant[merchantOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	o := cloneOrder(s.orders[id])
	return &o, nil
}

func (s *MemoryStore) SaveOrder(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now().UTC()
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *MemoryStore) CreateRegistration(ctx context.Context, r *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registrations[r.ID]; exists {
		return ErrDuplicate
	}
	if _, exists := s.registrationsByOrder[r.OrderID]; exists {
		return ErrDuplicate
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	reg := *r
	reg.Participants = append([]Participant(nil), r.Participants...)
	s.registrations[r.ID] = reg
	s.registrationsByOrder[r.OrderID] = r.ID
	return nil
}

func (s *MemoryStore) GetRegistration(ctx context.Context, merchantOrderID string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[merchantOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	r.Participants = append([]Participant(nil), r.Participants...)
	return &r, nil
}

// Count helpers for tests

func (s *MemoryStore) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

func (s *MemoryStore) RegistrationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func cloneOrder(o Order) Order {
	o.Participants = append([]Participant(nil), o.Participants...)
	return o
}
