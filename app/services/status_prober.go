package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/hirelane/onboarding-engine/utils"
)

// StatusProber keeps the recruiter registration status fresh. Probe is
// fingerprint-deduplicated; StartPolling drives the pending-approval page
// where the status must keep updating even though the session looks the same.
type StatusProber interface {
	// Probe fetches the status unless the session fingerprint matches the
	// last attempted probe. Extra triggers while a probe is in flight are
	// dropped.
	Probe(ctx context.Context)
	// ForceProbe fetches regardless of the fingerprint.
	ForceProbe(ctx context.Context)
	// Status returns the last known status; Loading reports that no probe
	// attempt has finished yet.
	Status() *models.RecruiterStatus
	Loading() bool
	// LastError returns the failure of the most recent finished attempt,
	// nil once a probe has succeeded.
	LastError() error
	// StartPolling probes every poll interval until the returned stop
	// function is called or ctx is cancelled.
	StartPolling(ctx context.Context) (stop func())
	// Subscribe registers fn to run after every status change.
	Subscribe(fn func()) (unsubscribe func())
	// Reset clears the cached status and fingerprint, for logout.
	Reset()
}

// StatusProberImpl implements StatusProber.
type StatusProberImpl struct {
	api      MarketAPI
	session  repository.SessionStore
	logger   *log.Logger
	interval time.Duration

	mu              sync.Mutex
	status          *models.RecruiterStatus
	lastFingerprint string
	lastErr         error
	inFlight        bool
	fetchedOnce     bool

	subMu       sync.RWMutex
	subscribers map[int]func()
	nextSubID   int
}

// NewStatusProber creates a status prober for one session.
func NewStatusProber(api MarketAPI, session repository.SessionStore, logger *log.Logger, interval time.Duration) StatusProber {
	if interval <= 0 {
		interval = utils.StatusPollInterval
	}
	return &StatusProberImpl{
		api:         api,
		session:     session,
		logger:      logger,
		interval:    interval,
		subscribers: make(map[int]func()),
	}
}

// fingerprint identifies the session inputs a probe result depends on: the
// bearer token and the cached role set, order-insensitive.
func (p *StatusProberImpl) fingerprint() string {
	account := p.session.Account()
	var roles []string
	if account != nil {
		roles = models.SortedRoleNames(account.Roles)
	}
	return p.session.Token() + "|" + strings.Join(roles, ",")
}

func (p *StatusProberImpl) Probe(ctx context.Context) {
	p.probe(ctx, false)
}

func (p *StatusProberImpl) ForceProbe(ctx context.Context) {
	p.probe(ctx, true)
}

func (p *StatusProberImpl) probe(ctx context.Context, force bool) {
	fp := p.fingerprint()

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return
	}
	if !force && fp == p.lastFingerprint {
		p.mu.Unlock()
		return
	}
	// The fingerprint records the attempt, not the outcome, so a failing
	// session does not hot-loop on every store change.
	p.lastFingerprint = fp
	p.inFlight = true
	p.mu.Unlock()

	hadRecruiterPending := p.session.Account().HasRole(models.RoleRecruiterPending)
	status, err := p.api.RecruiterStatus(ctx)

	p.mu.Lock()
	p.inFlight = false
	if ctx.Err() != nil {
		// A cancelled probe never applies its result, and must not block a
		// later retry.
		p.lastFingerprint = ""
		p.mu.Unlock()
		return
	}
	// Every finished attempt counts, failures included. The resolver must
	// see "attempted and failed" as distinct from "still loading" or it
	// would suspend rendering forever on a flaky upstream.
	p.fetchedOnce = true
	switch {
	case err != nil:
		p.lastErr = err
		if p.logger != nil {
			p.logger.Printf("recruiter status probe failed: %v", err)
		}
	case status.RegistrationMissing && hadRecruiterPending:
		// A pending upgrade has no approved registration yet; report it as
		// pending instead of missing so the resolver does not wipe the role.
		p.status = &models.RecruiterStatus{State: models.ApprovalPending}
		p.lastErr = nil
	case status.RegistrationMissing:
		p.status = status
		p.lastErr = nil
		// The next role change must re-probe even if the token is unchanged.
		p.lastFingerprint = ""
	default:
		p.status = status
		p.lastErr = nil
	}
	p.mu.Unlock()
	p.notify()
}

func (p *StatusProberImpl) Status() *models.RecruiterStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == nil {
		return nil
	}
	out := *p.status
	return &out
}

func (p *StatusProberImpl) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.fetchedOnce
}

func (p *StatusProberImpl) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *StatusProberImpl) StartPolling(ctx context.Context) func() {
	pollCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.probe(pollCtx, true)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				p.probe(pollCtx, true)
			}
		}
	}()
	return cancel
}

func (p *StatusProberImpl) Subscribe(fn func()) func() {
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subscribers, id)
			p.subMu.Unlock()
		})
	}
}

func (p *StatusProberImpl) Reset() {
	p.mu.Lock()
	p.status = nil
	p.lastFingerprint = ""
	p.lastErr = nil
	p.fetchedOnce = false
	p.mu.Unlock()
	p.notify()
}

func (p *StatusProberImpl) notify() {
	p.subMu.RLock()
	fns := make([]func(), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.subMu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
