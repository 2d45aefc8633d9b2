package businessflow

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/hirelane/onboarding-engine/utils"
)

// OnboardingFlow owns the session lifecycle and the two recruiter
// onboarding form submissions.
type OnboardingFlow interface {
	// BeginSession adopts a marketplace token: the account snapshot is
	// bootstrapped optimistically from its claims before any server read.
	BeginSession(ctx context.Context, token string) (*models.Account, error)
	// EndSession clears the token, the snapshot and both onboarding flags.
	EndSession(ctx context.Context)
	// SubmitConsultation records the consultation need upstream and flips
	// the local flag that moves the stage to AWAITING_APPROVAL.
	SubmitConsultation(ctx context.Context, need string) error
	// SetCompanySource records which company-attachment path was chosen.
	SetCompanySource(ctx context.Context, source models.CompanySource) error
}

// OnboardingFlowImpl implements OnboardingFlow.
type OnboardingFlowImpl struct {
	session   repository.SessionStore
	tokens    services.TokenService
	api       services.MarketAPI
	prober    services.StatusProber
	notifier  services.Notifier
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger
}

// NewOnboardingFlow creates a new onboarding flow.
func NewOnboardingFlow(
	session repository.SessionStore,
	tokens services.TokenService,
	api services.MarketAPI,
	prober services.StatusProber,
	notifier services.Notifier,
	auditRepo repository.GateAuditLogRepository,
	logger *log.Logger,
) OnboardingFlow {
	return &OnboardingFlowImpl{
		session:   session,
		tokens:    tokens,
		api:       api,
		prober:    prober,
		notifier:  notifier,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (f *OnboardingFlowImpl) BeginSession(ctx context.Context, token string) (*models.Account, error) {
	claims, err := f.tokens.ClaimsFromToken(token)
	if err != nil {
		return nil, NewBusinessError("INVALID_TOKEN", "token could not be decoded", err)
	}
	if claims.IsExpired() {
		return nil, NewBusinessError("TOKEN_EXPIRED", "token is expired", ErrSessionExpired)
	}
	account, err := f.tokens.AccountFromToken(token)
	if err != nil {
		return nil, NewBusinessError("INVALID_TOKEN", "token carries no usable account", err)
	}

	f.session.Clear()
	f.session.SetToken(token)
	f.session.SetAccount(account)
	f.session.ResetAuthFailure()
	f.prober.Reset()

	f.audit(ctx, models.AuditActionSessionStarted, account)
	if f.logger != nil {
		f.logger.Printf("session started for account %d", account.ID)
	}
	return account, nil
}

func (f *OnboardingFlowImpl) EndSession(ctx context.Context) {
	account := f.session.Account()
	f.session.Clear()
	f.prober.Reset()
	f.audit(ctx, models.AuditActionSessionCleared, account)
}

func (f *OnboardingFlowImpl) SubmitConsultation(ctx context.Context, need string) error {
	if need == "" {
		return ErrConsultationRequired
	}
	if f.session.Token() == "" || f.session.AuthFailed() {
		return ErrNotAuthenticated
	}
	if err := f.api.SubmitConsultation(ctx, need); err != nil {
		f.notifier.Notify(services.NotifyError, "Submission failed", "Your consultation need was not saved. Try again.")
		return NewBusinessError("CONSULTATION_FAILED", "failed to submit consultation need", err)
	}
	f.session.SetConsultationSubmitted(true)
	f.notifier.Notify(services.NotifySuccess, "Thanks, we got it", "We will reach out about your hiring needs.")
	return nil
}

func (f *OnboardingFlowImpl) SetCompanySource(ctx context.Context, source models.CompanySource) error {
	switch source {
	case models.CompanySourceExisting, models.CompanySourceNew:
	default:
		return NewBusinessError("INVALID_COMPANY_SOURCE", "company source must be existing or new", nil)
	}
	if f.session.Token() == "" || f.session.AuthFailed() {
		return ErrNotAuthenticated
	}
	f.session.SetCompanySource(source)
	return nil
}

func (f *OnboardingFlowImpl) audit(ctx context.Context, action string, account *models.Account) {
	if f.auditRepo == nil {
		return
	}
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		Action:        action,
		Success:       utils.ToPtr(true),
		CreatedAt:     utils.UTCNow(),
	}
	if account != nil {
		entry.AccountID = utils.ToPtr(account.ID)
		entry.Roles = models.RoleNames(account.Roles)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil && f.logger != nil {
		f.logger.Printf("failed to audit session event: %v", err)
	}
}
