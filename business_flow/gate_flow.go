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

// ProfileGateFlow guards job-seeker actions behind profile existence.
// EnsureProfile returns a Deferred that settles exactly once with
// {HasProfile}; it never fails, whatever happens upstream.
type ProfileGateFlow interface {
	EnsureProfile(ctx context.Context, intent models.GateIntent) *Deferred
	// HandleProfileSubmitted completes a pending gate with the submitted
	// create-profile form. Validation errors stay in the dialog: the
	// pending Deferred is left open for a retry.
	HandleProfileSubmitted(ctx context.Context, profile *models.JobSeekerProfile) error
	// HandleDialogDismissed settles a pending gate with {HasProfile:false}.
	HandleDialogDismissed(ctx context.Context)
	// HasCachedProfile reports profile existence, fetching it once.
	HasCachedProfile(ctx context.Context) bool
	// Invalidate drops the cached profile fetch.
	Invalidate()
}

// ProfileGateFlowImpl implements ProfileGateFlow.
type ProfileGateFlowImpl struct {
	session   repository.SessionStore
	api       services.MarketAPI
	apply     ApplyFlow
	navigator Navigator
	dialogs   DialogPort
	notifier  services.Notifier
	refresher services.SessionRefresher
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger

	mu            sync.Mutex
	profileLoaded bool
	profile       *models.JobSeekerProfile
	pending       *Deferred
	pendingIntent *models.GateIntent
}

// NewProfileGateFlow creates a new profile gate flow.
func NewProfileGateFlow(
	session repository.SessionStore,
	api services.MarketAPI,
	apply ApplyFlow,
	navigator Navigator,
	dialogs DialogPort,
	notifier services.Notifier,
	refresher services.SessionRefresher,
	auditRepo repository.GateAuditLogRepository,
	logger *log.Logger,
) ProfileGateFlow {
	return &ProfileGateFlowImpl{
		session:   session,
		api:       api,
		apply:     apply,
		navigator: navigator,
		dialogs:   dialogs,
		notifier:  notifier,
		refresher: refresher,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (f *ProfileGateFlowImpl) EnsureProfile(ctx context.Context, intent models.GateIntent) *Deferred {
	deferred := NewDeferred()

	// A newer gate supersedes an unsettled older one; leaving it to hang
	// forever would leak the caller. The stale gate reports no profile.
	f.mu.Lock()
	if f.pending != nil && !f.pending.Settled() {
		stale := f.pending
		f.pending = nil
		f.pendingIntent = nil
		f.mu.Unlock()
		stale.Resolve(GateResult{HasProfile: false})
		f.audit(ctx, models.AuditActionGateSuperseded, string(intent.Type), true)
	} else {
		f.mu.Unlock()
	}

	if f.session.Token() == "" || f.session.AuthFailed() || f.session.Account() == nil {
		f.notifier.Notify(services.NotifyWarning, "Sign in required", "Sign in to continue.")
		deferred.Resolve(GateResult{HasProfile: false})
		f.audit(ctx, models.AuditActionGateResolved, string(intent.Type), false)
		return deferred
	}

	if f.session.Account().HasRole(models.RoleJobSeeker) {
		profile, err := f.fetchProfileOnce(ctx)
		if err != nil {
			f.notifier.Notify(services.NotifyError, "Profile check failed", "Could not verify your profile. Try again.")
			deferred.Resolve(GateResult{HasProfile: false})
			f.audit(ctx, models.AuditActionGateResolved, string(intent.Type), false)
			return deferred
		}
		if profile != nil {
			f.dispatchIntent(ctx, intent)
			deferred.Resolve(GateResult{HasProfile: true})
			f.audit(ctx, models.AuditActionGateResolved, string(intent.Type), true)
			return deferred
		}
	}

	// No profile (or no role yet): open the create-profile dialog and park
	// the Deferred until the dialog settles it.
	f.mu.Lock()
	f.pending = deferred
	f.pendingIntent = &intent
	f.mu.Unlock()
	f.dialogs.Open(DialogCreateProfile, intent)
	f.audit(ctx, models.AuditActionGateOpened, string(intent.Type), true)
	return deferred
}

func (f *ProfileGateFlowImpl) HandleProfileSubmitted(ctx context.Context, profile *models.JobSeekerProfile) error {
	f.mu.Lock()
	pending := f.pending
	intent := f.pendingIntent
	f.mu.Unlock()
	if pending == nil {
		return ErrNoPendingGate
	}
	if profile == nil || profile.FullName == "" || profile.Email == "" || profile.Phone == "" {
		return ErrProfileFieldsEmpty
	}

	created, err := f.api.CreateJobSeekerProfile(ctx, profile)
	if err != nil {
		// Stays in the dialog for a retry; the gate remains pending.
		f.notifier.Notify(services.NotifyError, "Profile creation failed", "Could not create your profile. Try again.")
		return NewBusinessError("PROFILE_CREATE_FAILED", "failed to create job seeker profile", err)
	}

	f.mu.Lock()
	f.profile = created
	f.profileLoaded = true
	f.pending = nil
	f.pendingIntent = nil
	f.mu.Unlock()

	// Optimistic role patch: the server is the authority, the snapshot
	// catches up on the next confirmed read.
	f.session.PatchAccount(func(a *models.Account) *models.Account {
		return a.WithRole(models.RoleJobSeeker, true)
	})
	// Best-effort reconcile; failure is logged inside and never blocks.
	f.refresher.RefreshSession(ctx)

	f.dialogs.Close(DialogCreateProfile)
	f.notifier.Notify(services.NotifySuccess, "Profile created", "")
	f.audit(ctx, models.AuditActionProfileCreated, "", true)

	if intent != nil {
		f.dispatchIntent(ctx, *intent)
	}
	pending.Resolve(GateResult{HasProfile: true})
	f.audit(ctx, models.AuditActionGateResolved, "", true)
	return nil
}

func (f *ProfileGateFlowImpl) HandleDialogDismissed(ctx context.Context) {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.pendingIntent = nil
	f.mu.Unlock()

	f.dialogs.Close(DialogCreateProfile)
	if pending != nil {
		pending.Resolve(GateResult{HasProfile: false})
		f.audit(ctx, models.AuditActionGateResolved, "", false)
	}
}

func (f *ProfileGateFlowImpl) HasCachedProfile(ctx context.Context) bool {
	profile, err := f.fetchProfileOnce(ctx)
	return err == nil && profile != nil
}

func (f *ProfileGateFlowImpl) Invalidate() {
	f.mu.Lock()
	f.profileLoaded = false
	f.profile = nil
	f.mu.Unlock()
}

// fetchProfileOnce fetches the canonical profile at most once per gate
// lifetime. Not-found is cached as "no profile"; transient errors are not
// cached, so the next call retries.
func (f *ProfileGateFlowImpl) fetchProfileOnce(ctx context.Context) (*models.JobSeekerProfile, error) {
	f.mu.Lock()
	if f.profileLoaded {
		profile := f.profile
		f.mu.Unlock()
		return profile, nil
	}
	f.mu.Unlock()

	profile, err := f.api.JobSeekerMe(ctx)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok && apiErr.IsNotFound() {
			f.mu.Lock()
			f.profileLoaded = true
			f.profile = nil
			f.mu.Unlock()
			return nil, nil
		}
		return nil, err
	}

	f.mu.Lock()
	f.profileLoaded = true
	f.profile = profile
	f.mu.Unlock()
	return profile, nil
}

// dispatchIntent carries out the caller's stored intent once the profile
// prerequisite holds. For APPLY_JOB the gate settles at dialog-open time,
// not completion time; the apply sub-flow runs its own course.
func (f *ProfileGateFlowImpl) dispatchIntent(ctx context.Context, intent models.GateIntent) {
	switch intent.Type {
	case models.IntentApplyJob:
		if err := f.apply.Start(ctx, intent); err != nil && f.logger != nil {
			f.logger.Printf("apply sub-flow start failed: %v", err)
		}
	case models.IntentOpenProfile:
		f.navigator.NavigateTo(PathJobSeekerDashboard)
	case models.IntentFavoriteJob:
		// Nothing to do: the caller proceeds with the favorite toggle.
	}
}

func (f *ProfileGateFlowImpl) audit(ctx context.Context, action, detail string, success bool) {
	if f.auditRepo == nil {
		return
	}
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		Action:        action,
		Success:       utils.ToPtr(success),
		CreatedAt:     utils.UTCNow(),
	}
	if detail != "" {
		entry.Detail = utils.ToPtr(detail)
	}
	if account := f.session.Account(); account != nil {
		entry.AccountID = utils.ToPtr(account.ID)
		entry.Roles = models.RoleNames(account.Roles)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil && f.logger != nil {
		f.logger.Printf("failed to audit gate event: %v", err)
	}
}
