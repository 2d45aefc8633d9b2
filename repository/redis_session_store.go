package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/utils"
	"github.com/redis/go-redis/v9"
)

const (
	sessionFieldToken        = "token"
	sessionFieldAccount      = "account"
	sessionFieldConsultation = "consultation_submitted"
	sessionFieldCompanySrc   = "company_source"
	sessionFieldAuthFailed   = "auth_failed"
)

// RedisSessionStore persists a session as a Redis hash so it survives
// process restarts. Subscriber notification stays process-local; cross
// process fan-out is out of scope for a single engine instance.
type RedisSessionStore struct {
	client *redis.Client
	key    string

	mu          sync.RWMutex
	subscribers map[int]func()
	nextSubID   int
}

// NewRedisSessionStore creates a session store backed by the given Redis
// client, keyed per session ID.
func NewRedisSessionStore(client *redis.Client, sessionID string) *RedisSessionStore {
	return &RedisSessionStore{
		client:      client,
		key:         fmt.Sprintf("onboarding:session:%s", sessionID),
		subscribers: make(map[int]func()),
	}
}

func (s *RedisSessionStore) getField(field string) string {
	val, err := s.client.HGet(context.Background(), s.key, field).Result()
	if err != nil {
		return ""
	}
	return val
}

func (s *RedisSessionStore) setField(field, value string) {
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, field, value)
	pipe.Expire(ctx, s.key, utils.SessionTTL)
	_, _ = pipe.Exec(ctx)
	s.notify()
}

func (s *RedisSessionStore) Token() string {
	return s.getField(sessionFieldToken)
}

func (s *RedisSessionStore) SetToken(token string) {
	s.setField(sessionFieldToken, token)
}

func (s *RedisSessionStore) Account() *models.Account {
	raw := s.getField(sessionFieldAccount)
	if raw == "" {
		return nil
	}
	var account models.Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil
	}
	return &account
}

func (s *RedisSessionStore) SetAccount(account *models.Account) {
	if account == nil {
		ctx := context.Background()
		_ = s.client.HDel(ctx, s.key, sessionFieldAccount).Err()
		s.notify()
		return
	}
	raw, err := json.Marshal(account)
	if err != nil {
		return
	}
	s.setField(sessionFieldAccount, string(raw))
}

func (s *RedisSessionStore) PatchAccount(fn func(*models.Account) *models.Account) {
	// Redis-side optimistic locking is not needed here; each session is
	// driven by a single engine goroutine.
	s.SetAccount(fn(s.Account()))
}

func (s *RedisSessionStore) Flags() models.LocalFlags {
	return models.LocalFlags{
		ConsultationSubmitted: s.getField(sessionFieldConsultation) == "1",
		CompanySource:         models.CompanySource(s.getField(sessionFieldCompanySrc)),
	}
}

func (s *RedisSessionStore) SetConsultationSubmitted(submitted bool) {
	val := "0"
	if submitted {
		val = "1"
	}
	s.setField(sessionFieldConsultation, val)
}

func (s *RedisSessionStore) SetCompanySource(source models.CompanySource) {
	s.setField(sessionFieldCompanySrc, string(source))
}

func (s *RedisSessionStore) AuthFailed() bool {
	return s.getField(sessionFieldAuthFailed) == "1"
}

func (s *RedisSessionStore) TripAuthFailure() {
	s.setField(sessionFieldAuthFailed, "1")
}

func (s *RedisSessionStore) ResetAuthFailure() {
	s.setField(sessionFieldAuthFailed, "0")
}

func (s *RedisSessionStore) Clear() {
	_ = s.client.Del(context.Background(), s.key).Err()
	s.notify()
}

func (s *RedisSessionStore) Subscribe(fn func()) func() {
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

func (s *RedisSessionStore) notify() {
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
