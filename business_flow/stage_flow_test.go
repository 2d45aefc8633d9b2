package businessflow

import (
	"testing"

	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/utils"
	"github.com/stretchr/testify/assert"
)

func recruiterInput(mutate func(*StageInput)) StageInput {
	input := StageInput{
		Authenticated: true,
		CurrentPath:   PathDashboard,
	}
	if mutate != nil {
		mutate(&input)
	}
	return input
}

func TestResolveRecruiterStage(t *testing.T) {
	tests := []struct {
		name  string
		input StageInput
		want  StageDecision
	}{
		{
			name:  "unauthenticated redirects to login",
			input: recruiterInput(func(i *StageInput) { i.Authenticated = false }),
			want:  StageDecision{Stage: models.StageUnauthenticated, TargetPath: PathLogin, Redirect: true, RenderSuppressed: true},
		},
		{
			name:  "status loading suspends without a decision",
			input: recruiterInput(func(i *StageInput) { i.StatusLoading = true }),
			want:  StageDecision{Pending: true, RenderSuppressed: true},
		},
		{
			name:  "no recruiter role and no status goes to upgrade page",
			input: recruiterInput(nil),
			want:  StageDecision{Stage: models.StageAwaitingUpgrade, TargetPath: PathUpgradeRecruiter, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "registration missing heals stale recruiter cache",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{RegistrationMissing: true}
				i.Flags = models.LocalFlags{ConsultationSubmitted: true, CompanySource: models.CompanySourceNew}
			}),
			want: StageDecision{Stage: models.StageAwaitingUpgrade, TargetPath: PathUpgradeRecruiter, Redirect: true, RenderSuppressed: true, HealStaleCache: true},
		},
		{
			name: "fetched record without company on non-pending account heals",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalApproved}
			}),
			want: StageDecision{Stage: models.StageAwaitingUpgrade, TargetPath: PathUpgradeRecruiter, Redirect: true, RenderSuppressed: true, HealStaleCache: true},
		},
		{
			name: "pending record without company on non-pending account heals",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalPending}
			}),
			want: StageDecision{Stage: models.StageAwaitingUpgrade, TargetPath: PathUpgradeRecruiter, Redirect: true, RenderSuppressed: true, HealStaleCache: true},
		},
		{
			name: "approved recruiter on a content page stays put",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalApproved, CompanyID: utils.ToPtr(int64(3))}
			}),
			want: StageDecision{Stage: models.StageActive, TargetPath: PathDashboard},
		},
		{
			name: "approved recruiter on a gateway page is sent to the dashboard",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalApproved, CompanyID: utils.ToPtr(int64(3))}
				i.CurrentPath = PathConsultingNeed
			}),
			want: StageDecision{Stage: models.StageActive, TargetPath: PathDashboard, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "pending recruiter without consultation goes to consulting page",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalPending, CompanyID: utils.ToPtr(int64(3))}
			}),
			want: StageDecision{Stage: models.StageAwaitingConsultation, TargetPath: PathConsultingNeed, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "pending recruiter already on consulting page does not redirect",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalPending, CompanyID: utils.ToPtr(int64(3))}
				i.CurrentPath = PathConsultingNeed
			}),
			want: StageDecision{Stage: models.StageAwaitingConsultation, TargetPath: PathConsultingNeed},
		},
		{
			name: "rejected recruiter with consultation submitted waits for approval",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
				i.Status = &models.RecruiterStatus{State: models.ApprovalRejected, CompanyID: utils.ToPtr(int64(3))}
				i.Flags = models.LocalFlags{ConsultationSubmitted: true}
			}),
			want: StageDecision{Stage: models.StageAwaitingApproval, TargetPath: PathPendingApproval, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "pending-role account coerced to pending waits for approval",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiterPending}
				i.Status = &models.RecruiterStatus{State: models.ApprovalPending}
				i.Flags = models.LocalFlags{ConsultationSubmitted: true}
				i.CurrentPath = PathPendingApproval
			}),
			want: StageDecision{Stage: models.StageAwaitingApproval, TargetPath: PathPendingApproval},
		},
		{
			name: "pending-role account approved is sent to the dashboard",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiterPending}
				i.Status = &models.RecruiterStatus{State: models.ApprovalApproved, CompanyID: utils.ToPtr(int64(3))}
				i.CurrentPath = PathPendingApproval
			}),
			want: StageDecision{Stage: models.StageActive, TargetPath: PathDashboard, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "recruiter with failed probe suspends instead of guessing",
			input: recruiterInput(func(i *StageInput) {
				i.Roles = []models.RoleTag{models.RoleRecruiter}
			}),
			want: StageDecision{Pending: true, RenderSuppressed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRecruiterStage(tt.input))
		})
	}
}

// Re-resolving from the target path of a first decision must not ask for
// another redirect, whatever the inputs were.
func TestResolveRecruiterStage_IdempotentRedirect(t *testing.T) {
	inputs := []StageInput{
		recruiterInput(nil),
		recruiterInput(func(i *StageInput) { i.Authenticated = false }),
		recruiterInput(func(i *StageInput) {
			i.Roles = []models.RoleTag{models.RoleRecruiter}
			i.Status = &models.RecruiterStatus{State: models.ApprovalPending, CompanyID: utils.ToPtr(int64(1))}
		}),
		recruiterInput(func(i *StageInput) {
			i.Roles = []models.RoleTag{models.RoleRecruiter}
			i.Status = &models.RecruiterStatus{State: models.ApprovalApproved, CompanyID: utils.ToPtr(int64(1))}
			i.CurrentPath = PathPendingApproval
		}),
	}

	for _, input := range inputs {
		first := ResolveRecruiterStage(input)
		if first.Pending || !first.Redirect {
			continue
		}
		input.CurrentPath = first.TargetPath
		second := ResolveRecruiterStage(input)
		assert.False(t, second.Redirect, "stage %s looped back to %s", first.Stage, second.TargetPath)
		assert.Equal(t, first.TargetPath, second.TargetPath)
	}
}

func TestResolveJobSeekerStage(t *testing.T) {
	tests := []struct {
		name  string
		input StageInput
		want  StageDecision
	}{
		{
			name:  "unauthenticated redirects to login",
			input: StageInput{CurrentPath: PathJobSeekerDashboard},
			want:  StageDecision{Stage: models.StageUnauthenticated, TargetPath: PathLogin, Redirect: true, RenderSuppressed: true},
		},
		{
			name:  "missing role goes to onboarding",
			input: StageInput{Authenticated: true, CurrentPath: PathJobSeekerDashboard},
			want:  StageDecision{Stage: models.StageAwaitingLocalProfile, TargetPath: PathJobSeekerOnboard, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "role without profile goes to onboarding",
			input: StageInput{
				Authenticated: true,
				Roles:         []models.RoleTag{models.RoleJobSeeker},
				CurrentPath:   PathJobSeekerDashboard,
			},
			want: StageDecision{Stage: models.StageAwaitingLocalProfile, TargetPath: PathJobSeekerOnboard, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "complete job seeker leaves the onboarding page",
			input: StageInput{
				Authenticated: true,
				Roles:         []models.RoleTag{models.RoleJobSeeker},
				HasProfile:    true,
				CurrentPath:   PathJobSeekerOnboard,
			},
			want: StageDecision{Stage: models.StageActive, TargetPath: PathJobSeekerDashboard, Redirect: true, RenderSuppressed: true},
		},
		{
			name: "complete job seeker browses freely",
			input: StageInput{
				Authenticated: true,
				Roles:         []models.RoleTag{models.RoleJobSeeker},
				HasProfile:    true,
				CurrentPath:   "/jobs/42",
			},
			want: StageDecision{Stage: models.StageActive, TargetPath: "/jobs/42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveJobSeekerStage(tt.input))
		})
	}
}
