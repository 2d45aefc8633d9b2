package scheduler

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	mu      sync.Mutex
	tokens  []string
	removed []string
}

func (r *fakeRegistry) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

func (r *fakeRegistry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, token)
	for i, t := range r.tokens {
		if t == token {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			break
		}
	}
}

func reaperToken(t *testing.T, accountID int64, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"account_id": accountID}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return token
}

func TestSessionReaper_RunOnce(t *testing.T) {
	live := reaperToken(t, 1, time.Now().Add(time.Hour))
	expired := reaperToken(t, 2, time.Now().Add(-time.Hour))
	eternal := reaperToken(t, 3, time.Time{})

	registry := &fakeRegistry{tokens: []string{live, expired, eternal, "not-a-jwt"}}
	reaper := NewSessionReaper(registry, services.NewTokenService(), log.Default(), time.Minute)

	reaper.RunOnce(context.Background())

	assert.ElementsMatch(t, []string{expired, "not-a-jwt"}, registry.removed)
	assert.ElementsMatch(t, []string{live, eternal}, registry.Tokens())
}

func TestSessionReaper_StartStops(t *testing.T) {
	registry := &fakeRegistry{}
	reaper := NewSessionReaper(registry, services.NewTokenService(), log.Default(), 10*time.Millisecond)

	stop := reaper.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	stop()

	// No panic, nothing to remove on an empty registry.
	assert.Empty(t, registry.removed)
}
