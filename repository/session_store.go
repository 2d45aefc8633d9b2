package repository

import (
	"sync"

	"github.com/hirelane/onboarding-engine/models"
)

// MemorySessionStore keeps a single session's state in process memory.
// All reads return copies so callers cannot mutate shared state, and
// every write notifies subscribers after the lock is released.
type MemorySessionStore struct {
	mu          sync.RWMutex
	token       string
	account     *models.Account
	flags       models.LocalFlags
	authFailed  bool
	subscribers map[int]func()
	nextSubID   int
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		subscribers: make(map[int]func()),
	}
}

func (s *MemorySessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemorySessionStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.notify()
}

func (s *MemorySessionStore) Account() *models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account.Clone()
}

func (s *MemorySessionStore) SetAccount(account *models.Account) {
	s.mu.Lock()
	s.account = account.Clone()
	s.mu.Unlock()
	s.notify()
}

// PatchAccount applies fn to a copy of the current account and stores the
// result. fn receives nil when no account is set; returning nil clears it.
// The read-modify-write happens under a single lock acquisition.
func (s *MemorySessionStore) PatchAccount(fn func(*models.Account) *models.Account) {
	s.mu.Lock()
	s.account = fn(s.account.Clone())
	s.mu.Unlock()
	s.notify()
}

func (s *MemorySessionStore) Flags() models.LocalFlags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

func (s *MemorySessionStore) SetConsultationSubmitted(submitted bool) {
	s.mu.Lock()
	s.flags.ConsultationSubmitted = submitted
	s.mu.Unlock()
	s.notify()
}

func (s *MemorySessionStore) SetCompanySource(source models.CompanySource) {
	s.mu.Lock()
	s.flags.CompanySource = source
	s.mu.Unlock()
	s.notify()
}

func (s *MemorySessionStore) AuthFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authFailed
}

func (s *MemorySessionStore) TripAuthFailure() {
	s.mu.Lock()
	changed := !s.authFailed
	s.authFailed = true
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *MemorySessionStore) ResetAuthFailure() {
	s.mu.Lock()
	changed := s.authFailed
	s.authFailed = false
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *MemorySessionStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.account = nil
	s.flags = models.LocalFlags{}
	s.authFailed = false
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription and is safe to call more than once.
func (s *MemorySessionStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *MemorySessionStore) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
