// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"sync"

	"github.com/hirelane/onboarding-engine/app/services"
	businessflow "github.com/hirelane/onboarding-engine/business_flow"
	"github.com/hirelane/onboarding-engine/config"
	"github.com/hirelane/onboarding-engine/repository"
)

// PathState is the server-side Navigator: it tracks where the client is and
// where the engine last sent it.
type PathState struct {
	mu   sync.Mutex
	path string
}

func (p *PathState) NavigateTo(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

func (p *PathState) CurrentPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// SetCurrentPath records the path the client reports itself on.
func (p *PathState) SetCurrentPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.path = path
}

// DialogState is the server-side DialogPort: it tracks which dialogs the
// client should have open, for the facade to report back.
type DialogState struct {
	mu   sync.Mutex
	open map[businessflow.DialogKind]any
}

func NewDialogState() *DialogState {
	return &DialogState{open: make(map[businessflow.DialogKind]any)}
}

func (d *DialogState) Open(kind businessflow.DialogKind, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[kind] = payload
}

func (d *DialogState) Close(kind businessflow.DialogKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.open, kind)
}

func (d *DialogState) CloseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = make(map[businessflow.DialogKind]any)
}

// OpenDialogs lists the dialogs currently open.
func (d *DialogState) OpenDialogs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.open))
	for k := range d.open {
		out = append(out, string(k))
	}
	return out
}

// Engine bundles everything one session needs: its store, its upstream
// client, its prober and its flows. One Engine per bearer token.
type Engine struct {
	Session   repository.SessionStore
	API       services.MarketAPI
	Prober    services.StatusProber
	Notifier  *services.CollectingNotifier
	Dialogs   *DialogState
	Navigator *PathState

	Onboarding     businessflow.OnboardingFlow
	RecruiterGuard businessflow.RecruiterGuardFlow
	JobSeekerGuard businessflow.JobSeekerGuardFlow
	Gate           businessflow.ProfileGateFlow
	Apply          businessflow.ApplyFlow
}

// EngineRegistry hands out per-token engines, creating them on first use.
type EngineRegistry struct {
	cfg       *config.Config
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger
	newStore  func() repository.SessionStore

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewEngineRegistry creates a registry. newStore decides where session state
// lives (memory or Redis); a nil newStore defaults to in-memory stores.
func NewEngineRegistry(cfg *config.Config, auditRepo repository.GateAuditLogRepository, logger *log.Logger, newStore func() repository.SessionStore) *EngineRegistry {
	if newStore == nil {
		newStore = func() repository.SessionStore { return repository.NewMemorySessionStore() }
	}
	return &EngineRegistry{
		cfg:       cfg,
		auditRepo: auditRepo,
		logger:    logger,
		newStore:  newStore,
		engines:   make(map[string]*Engine),
	}
}

// Engine returns the engine for the given token, building it on demand.
func (r *EngineRegistry) Engine(token string) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if engine, ok := r.engines[token]; ok {
		return engine
	}
	engine := r.build(token)
	r.engines[token] = engine
	return engine
}

// Tokens lists the tokens with a live engine.
func (r *EngineRegistry) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := make([]string, 0, len(r.engines))
	for token := range r.engines {
		tokens = append(tokens, token)
	}
	return tokens
}

// Remove drops the engine for the token, tearing down its poller.
func (r *EngineRegistry) Remove(token string) {
	r.mu.Lock()
	engine, ok := r.engines[token]
	delete(r.engines, token)
	r.mu.Unlock()
	if ok {
		engine.RecruiterGuard.StopPolling()
	}
}

func (r *EngineRegistry) build(token string) *Engine {
	session := r.newStore()
	session.SetToken(token)

	collector := services.NewCollectingNotifier()
	notifier := services.NewTeeNotifier(collector, services.NewLogNotifier(r.logger))
	dialogs := NewDialogState()
	navigator := &PathState{}

	api := services.NewMarketAPI(&r.cfg.Upstream, session)
	prober := services.NewStatusProber(api, session, r.logger, r.cfg.Engine.PollInterval)
	tokens := services.NewTokenService()
	refresher := services.NewSessionRefresher(api, session, r.logger)

	apply := businessflow.NewApplyFlow(session, api, dialogs, notifier, r.auditRepo, r.logger)
	gate := businessflow.NewProfileGateFlow(session, api, apply, navigator, dialogs, notifier, refresher, r.auditRepo, r.logger)

	return &Engine{
		Session:        session,
		API:            api,
		Prober:         prober,
		Notifier:       collector,
		Dialogs:        dialogs,
		Navigator:      navigator,
		Onboarding:     businessflow.NewOnboardingFlow(session, tokens, api, prober, notifier, r.auditRepo, r.logger),
		RecruiterGuard: businessflow.NewRecruiterGuardFlow(session, prober, navigator, notifier, r.auditRepo, r.logger),
		JobSeekerGuard: businessflow.NewJobSeekerGuardFlow(session, gate, navigator, r.auditRepo, r.logger),
		Gate:           gate,
		Apply:          apply,
	}
}
