// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/hirelane/onboarding-engine/app/services"
)

// EngineRegistry is the subset of the engine registry the reaper needs.
// This keeps the scheduler independent and easy to test.
type EngineRegistry interface {
	Tokens() []string
	Remove(token string)
}

// SessionReaper periodically drops engines whose bearer token has expired or
// no longer decodes. A dropped engine stops its status poller, so abandoned
// sessions do not keep hitting the marketplace API.
type SessionReaper struct {
	registry EngineRegistry
	tokens   services.TokenService
	logger   *log.Logger
	interval time.Duration
}

func NewSessionReaper(registry EngineRegistry, tokens services.TokenService, logger *log.Logger, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	return &SessionReaper{
		registry: registry,
		tokens:   tokens,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the reap loop. The returned cancel function stops it.
func (s *SessionReaper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return cancel
}

// RunOnce sweeps the registry a single time.
func (s *SessionReaper) RunOnce(ctx context.Context) {
	reaped := 0
	for _, token := range s.registry.Tokens() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		claims, err := s.tokens.ClaimsFromToken(token)
		if err != nil {
			s.logger.Printf("reaper: dropping engine with undecodable token: %v", err)
			s.registry.Remove(token)
			reaped++
			continue
		}
		if claims.IsExpired() {
			s.logger.Printf("reaper: dropping engine for expired session (account=%d)", claims.AccountID)
			s.registry.Remove(token)
			reaped++
		}
	}

	if reaped > 0 {
		s.logger.Printf("reaper: removed %d expired engine(s)", reaped)
	}
}
