package businessflow

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/hirelane/onboarding-engine/utils"
)

// ApplyState names a step of the apply-to-job sub-flow.
type ApplyState string

const (
	ApplyStateIdle         ApplyState = "IDLE"
	ApplyStateFetchingCV   ApplyState = "FETCHING_CV"
	ApplyStateConfirmReuse ApplyState = "CONFIRM_REUSE"
	ApplyStateEditingCV    ApplyState = "EDITING_CV"
	ApplyStateSubmitting   ApplyState = "SUBMITTING"
	ApplyStateDone         ApplyState = "DONE"
	ApplyStateCancelled    ApplyState = "CANCELLED"
)

// applyTransitions is the allowed-transition table. Anything not listed is
// rejected with ErrInvalidApplyState. A failed submit moves back to the step
// it came from so the dialog stays open for a retry.
var applyTransitions = map[ApplyState][]ApplyState{
	ApplyStateIdle:         {ApplyStateFetchingCV},
	ApplyStateFetchingCV:   {ApplyStateConfirmReuse, ApplyStateEditingCV, ApplyStateCancelled},
	ApplyStateConfirmReuse: {ApplyStateSubmitting, ApplyStateEditingCV, ApplyStateCancelled},
	ApplyStateEditingCV:    {ApplyStateSubmitting, ApplyStateCancelled},
	ApplyStateSubmitting:   {ApplyStateDone, ApplyStateConfirmReuse, ApplyStateEditingCV, ApplyStateCancelled},
	ApplyStateDone:         {ApplyStateFetchingCV},
	ApplyStateCancelled:    {ApplyStateFetchingCV},
}

func applyTransitionAllowed(from, to ApplyState) bool {
	for _, s := range applyTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplySnapshot is the observable state of the sub-flow.
type ApplySnapshot struct {
	State    ApplyState       `json:"state"`
	JobID    int64            `json:"job_id,omitempty"`
	JobTitle string           `json:"job_title,omitempty"`
	SavedCV  *models.OnlineCV `json:"saved_cv,omitempty"`
	Draft    *models.ParsedCV `json:"draft,omitempty"`
}

// ApplyFlow drives a job application from intent to submission.
type ApplyFlow interface {
	// Start begins an application for the intent's job: fetches the latest
	// structured CV and opens either the reuse confirmation or the editor.
	Start(ctx context.Context, intent models.GateIntent) error
	// ConfirmReuse accepts or declines reusing the saved CV. Declining
	// aborts the whole flow.
	ConfirmReuse(ctx context.Context, accept bool) error
	// UploadCV parses an uploaded document into the edit form draft.
	UploadCV(ctx context.Context, fileName string, content []byte) (*models.ParsedCV, error)
	// SubmitEditedCV saves the edited structured CV and submits with it.
	SubmitEditedCV(ctx context.Context, cv *models.OnlineCV) error
	// Cancel aborts the flow from any non-terminal state.
	Cancel(ctx context.Context)
	Snapshot() ApplySnapshot
}

// ApplyFlowImpl implements ApplyFlow.
type ApplyFlowImpl struct {
	session   repository.SessionStore
	api       services.MarketAPI
	dialogs   DialogPort
	notifier  services.Notifier
	auditRepo repository.GateAuditLogRepository
	logger    *log.Logger

	mu       sync.Mutex
	state    ApplyState
	jobID    int64
	jobTitle string
	savedCV  *models.OnlineCV
	draft    *models.ParsedCV
}

// NewApplyFlow creates a new apply flow.
func NewApplyFlow(
	session repository.SessionStore,
	api services.MarketAPI,
	dialogs DialogPort,
	notifier services.Notifier,
	auditRepo repository.GateAuditLogRepository,
	logger *log.Logger,
) ApplyFlow {
	return &ApplyFlowImpl{
		session:   session,
		api:       api,
		dialogs:   dialogs,
		notifier:  notifier,
		auditRepo: auditRepo,
		logger:    logger,
		state:     ApplyStateIdle,
	}
}

// transition moves the machine, enforcing the table. Callers hold f.mu.
func (f *ApplyFlowImpl) transition(to ApplyState) error {
	if !applyTransitionAllowed(f.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidApplyState, f.state, to)
	}
	f.state = to
	return nil
}

func (f *ApplyFlowImpl) Start(ctx context.Context, intent models.GateIntent) error {
	f.mu.Lock()
	if err := f.transition(ApplyStateFetchingCV); err != nil {
		f.mu.Unlock()
		return err
	}
	f.jobID = intent.JobID
	f.jobTitle = intent.JobTitle
	f.savedCV = nil
	f.draft = nil
	f.mu.Unlock()

	cv, err := f.api.LatestOnlineCV(ctx)
	if err != nil {
		f.notifier.Notify(services.NotifyError, "Could not load your CV", "Try applying again in a moment.")
		f.abort(ctx)
		return NewBusinessError("CV_FETCH_FAILED", "failed to fetch latest CV", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != ApplyStateFetchingCV {
		// Cancelled while fetching; the result is stale.
		return ErrApplyAborted
	}
	if cv != nil {
		f.savedCV = cv
		_ = f.transition(ApplyStateConfirmReuse)
		f.dialogs.Open(DialogConfirmReuse, ApplySnapshot{State: f.state, JobID: f.jobID, JobTitle: f.jobTitle, SavedCV: cv})
		return nil
	}
	_ = f.transition(ApplyStateEditingCV)
	f.dialogs.Open(DialogEditCV, ApplySnapshot{State: f.state, JobID: f.jobID, JobTitle: f.jobTitle})
	return nil
}

func (f *ApplyFlowImpl) ConfirmReuse(ctx context.Context, accept bool) error {
	f.mu.Lock()
	if f.state != ApplyStateConfirmReuse {
		f.mu.Unlock()
		return ErrInvalidApplyState
	}
	if !accept {
		f.mu.Unlock()
		f.abort(ctx)
		return nil
	}
	cvID := f.savedCV.ID
	_ = f.transition(ApplyStateSubmitting)
	f.mu.Unlock()

	return f.submit(ctx, cvID, ApplyStateConfirmReuse)
}

func (f *ApplyFlowImpl) UploadCV(ctx context.Context, fileName string, content []byte) (*models.ParsedCV, error) {
	f.mu.Lock()
	if f.state != ApplyStateEditingCV {
		f.mu.Unlock()
		return nil, ErrInvalidApplyState
	}
	f.mu.Unlock()

	parsed, err := f.api.ParseCV(ctx, fileName, content)
	if err != nil {
		f.notifier.Notify(services.NotifyError, "CV parsing failed", "Check the file and try again.")
		return nil, NewBusinessError("CV_PARSE_FAILED", "failed to parse CV", err)
	}

	f.mu.Lock()
	if f.state == ApplyStateEditingCV {
		f.draft = parsed
	}
	f.mu.Unlock()
	return parsed, nil
}

func (f *ApplyFlowImpl) SubmitEditedCV(ctx context.Context, cv *models.OnlineCV) error {
	f.mu.Lock()
	if f.state != ApplyStateEditingCV {
		f.mu.Unlock()
		return ErrInvalidApplyState
	}
	_ = f.transition(ApplyStateSubmitting)
	f.mu.Unlock()

	saved, err := f.api.SaveOnlineCV(ctx, cv)
	if err != nil {
		f.notifier.Notify(services.NotifyError, "Could not save your CV", "Try again.")
		f.mu.Lock()
		_ = f.transition(ApplyStateEditingCV)
		f.mu.Unlock()
		return NewBusinessError("CV_SAVE_FAILED", "failed to save CV", err)
	}

	f.mu.Lock()
	f.savedCV = saved
	f.mu.Unlock()
	return f.submit(ctx, saved.ID, ApplyStateEditingCV)
}

// submit calls the apply endpoint. On failure the machine returns to
// retryState and the dialog stays open.
func (f *ApplyFlowImpl) submit(ctx context.Context, cvID int64, retryState ApplyState) error {
	f.mu.Lock()
	jobID, jobTitle := f.jobID, f.jobTitle
	f.mu.Unlock()

	if _, err := f.api.ApplyToJob(ctx, jobID, cvID); err != nil {
		f.notifier.Notify(services.NotifyError, "Application failed", "Your application was not sent. Try again.")
		f.mu.Lock()
		_ = f.transition(retryState)
		f.mu.Unlock()
		f.audit(ctx, models.AuditActionApplySubmitted, false)
		return NewBusinessError("APPLY_FAILED", "failed to submit application", err)
	}

	f.mu.Lock()
	_ = f.transition(ApplyStateDone)
	f.jobID = 0
	f.jobTitle = ""
	f.draft = nil
	f.mu.Unlock()

	f.dialogs.CloseAll()
	f.notifier.Notify(services.NotifySuccess, "Application sent", fmt.Sprintf("You applied to %s.", jobTitle))
	f.audit(ctx, models.AuditActionApplySubmitted, true)
	return nil
}

func (f *ApplyFlowImpl) Cancel(ctx context.Context) {
	f.abort(ctx)
}

// abort clears the job intent and the parsed draft. A CV record already
// saved mid-flow stays saved.
func (f *ApplyFlowImpl) abort(ctx context.Context) {
	f.mu.Lock()
	if f.state == ApplyStateIdle || f.state == ApplyStateDone || f.state == ApplyStateCancelled {
		f.mu.Unlock()
		return
	}
	_ = f.transition(ApplyStateCancelled)
	f.jobID = 0
	f.jobTitle = ""
	f.draft = nil
	f.mu.Unlock()

	f.dialogs.Close(DialogConfirmReuse)
	f.dialogs.Close(DialogEditCV)
	f.dialogs.Close(DialogApply)
	f.audit(ctx, models.AuditActionApplyCancelled, true)
}

func (f *ApplyFlowImpl) Snapshot() ApplySnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ApplySnapshot{
		State:    f.state,
		JobID:    f.jobID,
		JobTitle: f.jobTitle,
		SavedCV:  f.savedCV,
		Draft:    f.draft,
	}
}

func (f *ApplyFlowImpl) audit(ctx context.Context, action string, success bool) {
	if f.auditRepo == nil {
		return
	}
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		Action:        action,
		Success:       utils.ToPtr(success),
		CreatedAt:     utils.UTCNow(),
	}
	if account := f.session.Account(); account != nil {
		entry.AccountID = utils.ToPtr(account.ID)
		entry.Roles = models.RoleNames(account.Roles)
	}
	if err := f.auditRepo.Save(ctx, entry); err != nil && f.logger != nil {
		f.logger.Printf("failed to audit apply event: %v", err)
	}
}
