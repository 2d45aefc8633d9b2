// Package repository provides data access implementations for the engine's
// persisted state: the per-session store and the gate audit log.
package repository

import (
	"context"

	"github.com/hirelane/onboarding-engine/models"
)

type contextKey string

// TxContextKey carries an open gorm transaction through a context.
const TxContextKey contextKey = "tx"

// GateAuditLogRepository persists guard decisions and gate settlements.
// Writes are best-effort from the engine's point of view; callers treat
// failures as non-fatal.
type GateAuditLogRepository interface {
	Save(ctx context.Context, entry *models.GateAuditLog) error
	ByFilter(ctx context.Context, filter models.GateAuditLogFilter, limit, offset int) ([]*models.GateAuditLog, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.GateAuditLog, error)
}

// SessionStore holds the engine's session-scoped mutable state: the access
// token, the cached account snapshot, the two onboarding flags and the
// auth-failed latch. Implementations are safe for concurrent use; writes are
// last-writer-wins. PatchAccount is the only mutation discipline required:
// the read-modify-write of the snapshot happens atomically from the caller's
// perspective.
type SessionStore interface {
	Token() string
	SetToken(token string)

	Account() *models.Account
	SetAccount(account *models.Account)
	// PatchAccount applies fn to the current snapshot and stores the result
	// in one step, so two concurrent patches cannot lose one another.
	PatchAccount(fn func(*models.Account) *models.Account)

	Flags() models.LocalFlags
	SetConsultationSubmitted(v bool)
	SetCompanySource(src models.CompanySource)

	// AuthFailed is the process-wide latch: once tripped, upstream calls
	// short-circuit to a synthetic unauthenticated error until a fresh
	// login resets it.
	AuthFailed() bool
	TripAuthFailure()
	ResetAuthFailure()

	// Clear removes the token, the account blob and both flags together,
	// and resets the latch. Used on logout and on a detected recruiter
	// registration reset.
	Clear()

	// Subscribe registers fn to run after every mutation. The returned
	// function removes the subscription.
	Subscribe(fn func()) (unsubscribe func())
}
