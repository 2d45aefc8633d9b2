// Package businessflow contains the business logic for the onboarding engine.
package businessflow

import (
	"sync"
	"sync/atomic"

	"github.com/hirelane/onboarding-engine/models"
)

const RequestIDKey = "X-Request-ID"

// Gateway and dashboard paths the stage resolver steers between.
const (
	PathLogin              = "/login"
	PathUpgradeRecruiter   = "/upgrade-recruiter"
	PathConsultingNeed     = "/consulting-need"
	PathPendingApproval    = "/pending-approval"
	PathDashboard          = "/dashboard"
	PathJobSeekerDashboard = "/job-seeker/dashboard"
	PathJobSeekerOnboard   = "/job-seeker/onboarding"
)

// GatewayPaths are the recruiter onboarding pages an activated recruiter is
// redirected away from.
var GatewayPaths = []string{PathUpgradeRecruiter, PathConsultingNeed, PathPendingApproval}

// IsGatewayPath reports whether path is one of the recruiter gateway pages.
func IsGatewayPath(path string) bool {
	for _, p := range GatewayPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Navigator is the port through which flows change the client's location.
// Implementations must be idempotent: navigating to the current path is a
// no-op.
type Navigator interface {
	NavigateTo(path string)
	CurrentPath() string
}

// DialogKind names the client-side dialogs the gate and apply flows drive.
type DialogKind string

const (
	DialogCreateProfile DialogKind = "create_profile"
	DialogConfirmReuse  DialogKind = "confirm_reuse_cv"
	DialogEditCV        DialogKind = "edit_cv"
	DialogApply         DialogKind = "apply"
)

// DialogPort opens and closes client dialogs. Payload is dialog-specific
// display data; implementations must tolerate unknown kinds.
type DialogPort interface {
	Open(kind DialogKind, payload any)
	Close(kind DialogKind)
	CloseAll()
}

// GateResult is the single value every profile gate settles with. The gate
// never fails: callers branch on HasProfile only.
type GateResult struct {
	HasProfile bool `json:"has_profile"`
}

// Deferred is a one-shot promise for a GateResult. Resolve is safe to call
// from any goroutine and only the first call wins.
type Deferred struct {
	once    sync.Once
	ch      chan GateResult
	settled atomic.Bool
}

// NewDeferred creates an unsettled Deferred.
func NewDeferred() *Deferred {
	return &Deferred{ch: make(chan GateResult, 1)}
}

// Resolve settles the Deferred. Calls after the first are ignored.
func (d *Deferred) Resolve(result GateResult) {
	d.once.Do(func() {
		d.ch <- result
		close(d.ch)
		d.settled.Store(true)
	})
}

// Result returns the channel the settled value is delivered on. The channel
// is closed after delivery, so a drained receive yields the zero result.
func (d *Deferred) Result() <-chan GateResult {
	return d.ch
}

// Settled reports whether Resolve has already run.
func (d *Deferred) Settled() bool {
	return d.settled.Load()
}

// StageInput is everything the stage resolver looks at. It is assembled by
// the guards from the session store and the status prober.
type StageInput struct {
	Authenticated bool
	Roles         []models.RoleTag
	Status        *models.RecruiterStatus
	StatusLoading bool
	Flags         models.LocalFlags
	HasProfile    bool
	CurrentPath   string
}

// StageDecision is the resolver's verdict: where the user is in the funnel
// and what the dashboard shell should do about it.
type StageDecision struct {
	Stage models.Stage `json:"stage"`
	// TargetPath is the page this stage belongs on.
	TargetPath string `json:"target_path,omitempty"`
	// Redirect is set when CurrentPath differs from TargetPath.
	Redirect bool `json:"redirect"`
	// RenderSuppressed tells the shell to render nothing while off-stage or
	// still resolving, instead of flashing the wrong dashboard.
	RenderSuppressed bool `json:"render_suppressed"`
	// HealStaleCache tells the guard to strip cached recruiter roles and
	// clear the local onboarding flags before re-evaluating.
	HealStaleCache bool `json:"-"`
	// Pending is set while a decision cannot be made yet (status loading or
	// unknowable); nothing should redirect on a pending decision.
	Pending bool `json:"pending"`
}
