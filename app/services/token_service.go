package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/hirelane/onboarding-engine/utils"
)

// SessionClaims is the subset of marketplace JWT claims the engine reads.
type SessionClaims struct {
	AccountID int64
	Email     string
	Roles     []models.RoleTag
	ExpiresAt time.Time
}

// IsExpired reports whether the claims' expiry has passed. Tokens without an
// exp claim are treated as unexpired; the backend rejects them if it cares.
func (c *SessionClaims) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return utils.IsExpired(c.ExpiresAt)
}

// TokenService decodes marketplace tokens. Tokens are issued and verified
// elsewhere; the engine only reads them to bootstrap an account snapshot, so
// parsing is deliberately unverified.
type TokenService interface {
	ClaimsFromToken(token string) (*SessionClaims, error)
	AccountFromToken(token string) (*models.Account, error)
}

// TokenServiceImpl implements TokenService.
type TokenServiceImpl struct{}

// NewTokenService creates a new token service instance.
func NewTokenService() TokenService {
	return &TokenServiceImpl{}
}

type marketClaims struct {
	AccountID int64    `json:"account_id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

func (s *TokenServiceImpl) ClaimsFromToken(token string) (*SessionClaims, error) {
	var claims marketClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	out := &SessionClaims{
		AccountID: claims.AccountID,
		Email:     claims.Email,
	}
	for _, name := range claims.Roles {
		if role, err := models.ParseRole(name); err == nil {
			out.Roles = append(out.Roles, role)
		}
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// AccountFromToken builds the optimistic account snapshot a new session
// starts from, before any server read confirms it.
func (s *TokenServiceImpl) AccountFromToken(token string) (*models.Account, error) {
	claims, err := s.ClaimsFromToken(token)
	if err != nil {
		return nil, err
	}
	if claims.AccountID == 0 {
		return nil, fmt.Errorf("token carries no account id")
	}
	return &models.Account{
		ID:    claims.AccountID,
		Email: claims.Email,
		Roles: claims.Roles,
	}, nil
}

// SessionRefresher refreshes the session token after optimistic role patches
// so later requests carry the new roles. Failures are logged, never fatal:
// the patched snapshot already covers the UI until the next login.
type SessionRefresher interface {
	RefreshSession(ctx context.Context)
}

// SessionRefresherImpl implements SessionRefresher.
type SessionRefresherImpl struct {
	api     MarketAPI
	session repository.SessionStore
	logger  *log.Logger
}

// NewSessionRefresher creates a new session refresher.
func NewSessionRefresher(api MarketAPI, session repository.SessionStore, logger *log.Logger) SessionRefresher {
	return &SessionRefresherImpl{api: api, session: session, logger: logger}
}

func (r *SessionRefresherImpl) RefreshSession(ctx context.Context) {
	token, err := r.api.RefreshToken(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("session token refresh failed: %v", err)
		}
		return
	}
	if token != "" {
		r.session.SetToken(token)
	}
}
