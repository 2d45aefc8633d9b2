package businessflow

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/hirelane/onboarding-engine/utils"
)

// RecruiterGuardFlow protects the recruiter dashboard: on every navigation
// it resolves the stage and steers the user to the right gateway page.
// Evaluate never fails; upstream trouble degrades to the last known stage
// plus a notification.
type RecruiterGuardFlow interface {
	Evaluate(ctx context.Context, currentPath string) StageDecision
	// StopPolling tears down the pending-approval poller, for unmount and
	// logout.
	StopPolling()
}

// JobSeekerGuardFlow protects the job-seeker dashboard.
type JobSeekerGuardFlow interface {
	Evaluate(ctx context.Context, currentPath string) StageDecision
}

// RecruiterGuardFlowImpl implements RecruiterGuardFlow.
type RecruiterGuardFlowImpl struct {
	session   repository.SessionStore
	prober    services.StatusProber
	navigator Navigator
	notifier  services.Notifier
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger

	mu           sync.Mutex
	lastDecision *StageDecision
	stopPolling  func()
	warnedOnce   bool
}

// NewRecruiterGuardFlow creates a new recruiter guard flow.
func NewRecruiterGuardFlow(
	session repository.SessionStore,
	prober services.StatusProber,
	navigator Navigator,
	notifier services.Notifier,
	auditRepo repository.GateAuditLogRepository,
	logger *log.Logger,
) RecruiterGuardFlow {
	return &RecruiterGuardFlowImpl{
		session:   session,
		prober:    prober,
		navigator: navigator,
		notifier:  notifier,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (f *RecruiterGuardFlowImpl) Evaluate(ctx context.Context, currentPath string) StageDecision {
	input := f.gatherInput(currentPath)
	if input.Authenticated {
		if f.prober.LastError() != nil {
			// The fingerprint records attempts, so a failed probe would
			// otherwise never be retried. Navigation is the retry trigger.
			f.prober.ForceProbe(ctx)
		} else {
			// Cheap when the session fingerprint is unchanged.
			f.prober.Probe(ctx)
		}
		input = f.gatherInput(currentPath)
	}

	decision := ResolveRecruiterStage(input)

	if decision.HealStaleCache {
		f.healStaleCache(ctx, input)
		input = f.gatherInput(currentPath)
		decision = ResolveRecruiterStage(input)
	}

	f.mu.Lock()
	if decision.Pending {
		if !input.StatusLoading && !f.warnedOnce {
			f.warnedOnce = true
			f.notifier.Notify(services.NotifyWarning, "Status unavailable", "Could not confirm your recruiter status. Retrying shortly.")
		}
		if f.lastDecision != nil {
			// Hold the last known stage instead of guessing; never
			// redirect off a stale decision.
			held := *f.lastDecision
			held.Redirect = false
			held.Pending = true
			f.mu.Unlock()
			return held
		}
		if !input.StatusLoading {
			// Probe attempted and failed with nothing cached. Keep the
			// current page rendered so the user sees the warning instead
			// of a blank screen.
			decision.RenderSuppressed = false
		}
		f.mu.Unlock()
		return decision
	}
	f.warnedOnce = false
	f.lastDecision = &decision
	f.mu.Unlock()

	f.applyDecision(ctx, input, decision)
	return decision
}

func (f *RecruiterGuardFlowImpl) applyDecision(ctx context.Context, input StageInput, decision StageDecision) {
	f.audit(ctx, input, decision, models.AuditActionStageResolved)

	if decision.Redirect && f.navigator.CurrentPath() != decision.TargetPath {
		f.navigator.NavigateTo(decision.TargetPath)
		f.audit(ctx, input, decision, models.AuditActionRedirectIssued)
	}

	// The pending-approval page is the only place the status must keep
	// refreshing without any session change.
	f.syncPolling(decision)
}

// healStaleCache strips the cached recruiter-family roles and clears both
// onboarding flags after the backend reported the registration as gone. The
// role strip is a single atomic patch.
func (f *RecruiterGuardFlowImpl) healStaleCache(ctx context.Context, input StageInput) {
	f.session.PatchAccount(func(a *models.Account) *models.Account {
		return a.WithoutRecruiterRoles()
	})
	f.session.SetConsultationSubmitted(false)
	f.session.SetCompanySource(models.CompanySourceUnset)
	f.audit(ctx, input, StageDecision{Stage: models.StageAwaitingUpgrade}, models.AuditActionCacheHealed)
	if f.logger != nil {
		f.logger.Printf("healed stale recruiter cache for account")
	}
}

func (f *RecruiterGuardFlowImpl) syncPolling(decision StageDecision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	onPendingPage := decision.Stage == models.StageAwaitingApproval && !decision.Redirect
	switch {
	case onPendingPage && f.stopPolling == nil:
		f.stopPolling = f.prober.StartPolling(context.Background())
	case !onPendingPage && f.stopPolling != nil:
		f.stopPolling()
		f.stopPolling = nil
	}
}

func (f *RecruiterGuardFlowImpl) StopPolling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopPolling != nil {
		f.stopPolling()
		f.stopPolling = nil
	}
}

func (f *RecruiterGuardFlowImpl) gatherInput(currentPath string) StageInput {
	account := f.session.Account()
	input := StageInput{
		Authenticated: f.session.Token() != "" && !f.session.AuthFailed() && account != nil,
		Status:        f.prober.Status(),
		StatusLoading: f.prober.Loading(),
		Flags:         f.session.Flags(),
		CurrentPath:   currentPath,
	}
	if account != nil {
		input.Roles = account.Roles
	}
	return input
}

// audit records a guard decision; failures are logged and swallowed.
func (f *RecruiterGuardFlowImpl) audit(ctx context.Context, input StageInput, decision StageDecision, action string) {
	if f.auditRepo == nil {
		return
	}
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		Action:        action,
		Stage:         string(decision.Stage),
		Roles:         models.RoleNames(input.Roles),
		Path:          utils.ToPtr(input.CurrentPath),
		Success:       utils.ToPtr(true),
		CreatedAt:     utils.UTCNow(),
	}
	if decision.TargetPath != "" {
		entry.TargetPath = utils.ToPtr(decision.TargetPath)
	}
	if account := f.session.Account(); account != nil {
		entry.AccountID = utils.ToPtr(account.ID)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil && f.logger != nil {
		f.logger.Printf("failed to audit guard decision: %v", err)
	}
}

// JobSeekerGuardFlowImpl implements JobSeekerGuardFlow. It resolves from
// the session store and the gate's cached profile; no remote status probe.
type JobSeekerGuardFlowImpl struct {
	session   repository.SessionStore
	gate      ProfileGateFlow
	navigator Navigator
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger
}

// NewJobSeekerGuardFlow creates a new job-seeker guard flow.
func NewJobSeekerGuardFlow(
	session repository.SessionStore,
	gate ProfileGateFlow,
	navigator Navigator,
	auditRepo repository.GateAuditLogRepository,
	logger *log.Logger,
) JobSeekerGuardFlow {
	return &JobSeekerGuardFlowImpl{
		session:   session,
		gate:      gate,
		navigator: navigator,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (f *JobSeekerGuardFlowImpl) Evaluate(ctx context.Context, currentPath string) StageDecision {
	account := f.session.Account()
	input := StageInput{
		Authenticated: f.session.Token() != "" && !f.session.AuthFailed() && account != nil,
		Flags:         f.session.Flags(),
		CurrentPath:   currentPath,
	}
	if account != nil {
		input.Roles = account.Roles
	}
	if input.Authenticated && account.HasRole(models.RoleJobSeeker) {
		input.HasProfile = f.gate.HasCachedProfile(ctx)
	}

	decision := ResolveJobSeekerStage(input)
	if decision.Redirect && f.navigator.CurrentPath() != decision.TargetPath {
		f.navigator.NavigateTo(decision.TargetPath)
	}

	if f.auditRepo != nil {
		entry := &models.GateAuditLog{
			CorrelationID: uuid.New(),
			Action:        models.AuditActionStageResolved,
			Stage:         string(decision.Stage),
			Roles:         models.RoleNames(input.Roles),
			Path:          utils.ToPtr(currentPath),
			Success:       utils.ToPtr(true),
			CreatedAt:     utils.UTCNow(),
		}
		if account != nil {
			entry.AccountID = utils.ToPtr(account.ID)
		}
		if err := f.auditRepo.Save(ctx, entry); err != nil && f.logger != nil {
			f.logger.Printf("failed to audit guard decision: %v", err)
		}
	}
	return decision
}
