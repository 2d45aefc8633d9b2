package businessflow

import (
	"github.com/hirelane/onboarding-engine/models"
)

// ResolveRecruiterStage derives the onboarding stage for the recruiter
// dashboard. It is a pure function of its input: no fetching, no mutation.
// Cache healing and navigation are signalled in the decision and carried out
// by the guard.
//
// The fetched status always wins over cached role tags when they disagree;
// cached roles are optimistic and corrected whenever a probe succeeds.
func ResolveRecruiterStage(input StageInput) StageDecision {
	if !input.Authenticated {
		return decide(models.StageUnauthenticated, PathLogin, input.CurrentPath)
	}

	// No decision while the first probe is outstanding. Redirecting on a
	// guess would bounce the user through the wrong gateway page.
	if input.StatusLoading {
		return StageDecision{Pending: true, RenderSuppressed: true}
	}

	hasRecruiter := hasRole(input.Roles, models.RoleRecruiter)
	hasPending := hasRole(input.Roles, models.RoleRecruiterPending)

	// A missing registration, or a fetched one with no company on a
	// non-pending account, means the cached recruiter tags are stale.
	if input.Status != nil && (input.Status.RegistrationMissing || (input.Status.CompanyAbsent() && !hasPending)) {
		out := decide(models.StageAwaitingUpgrade, PathUpgradeRecruiter, input.CurrentPath)
		out.HealStaleCache = true
		return out
	}

	switch {
	case hasRecruiter:
		if !input.Status.Known() {
			// Probe failed or has not run; hold the last known stage
			// rather than guessing.
			return StageDecision{Pending: true, RenderSuppressed: true}
		}
		switch input.Status.State {
		case models.ApprovalApproved:
			return resolveActive(input.CurrentPath)
		case models.ApprovalPending, models.ApprovalRejected:
			return resolveConsultationBranch(input)
		}
		return StageDecision{Pending: true, RenderSuppressed: true}

	case hasPending:
		if !input.Status.Known() {
			return StageDecision{Pending: true, RenderSuppressed: true}
		}
		if input.Status.State == models.ApprovalApproved {
			// Approval arrived before the role promotion; send the user
			// in, the caller promotes the role out-of-band.
			out := decide(models.StageActive, PathDashboard, input.CurrentPath)
			out.RenderSuppressed = out.Redirect
			return out
		}
		return resolveConsultationBranch(input)

	default:
		return decide(models.StageAwaitingUpgrade, PathUpgradeRecruiter, input.CurrentPath)
	}
}

// ResolveJobSeekerStage derives the onboarding stage for the job-seeker
// dashboard, the second guard variant. It needs no remote status, only the
// role snapshot and profile existence.
func ResolveJobSeekerStage(input StageInput) StageDecision {
	if !input.Authenticated {
		return decide(models.StageUnauthenticated, PathLogin, input.CurrentPath)
	}
	if !hasRole(input.Roles, models.RoleJobSeeker) || !input.HasProfile {
		return decide(models.StageAwaitingLocalProfile, PathJobSeekerOnboard, input.CurrentPath)
	}
	if input.CurrentPath == PathJobSeekerOnboard {
		return decide(models.StageActive, PathJobSeekerDashboard, input.CurrentPath)
	}
	return StageDecision{Stage: models.StageActive, TargetPath: input.CurrentPath}
}

// resolveActive handles the APPROVED recruiter: the gateway pages are no
// longer legitimate, everything else is.
func resolveActive(currentPath string) StageDecision {
	if IsGatewayPath(currentPath) {
		out := decide(models.StageActive, PathDashboard, currentPath)
		out.RenderSuppressed = true
		return out
	}
	return StageDecision{Stage: models.StageActive, TargetPath: currentPath}
}

func resolveConsultationBranch(input StageInput) StageDecision {
	if !input.Flags.ConsultationSubmitted {
		return decide(models.StageAwaitingConsultation, PathConsultingNeed, input.CurrentPath)
	}
	return decide(models.StageAwaitingApproval, PathPendingApproval, input.CurrentPath)
}

// decide builds the common decision shape: redirect only when not already
// on the target, suppress rendering until the redirect has landed.
func decide(stage models.Stage, targetPath, currentPath string) StageDecision {
	redirect := currentPath != targetPath
	return StageDecision{
		Stage:            stage,
		TargetPath:       targetPath,
		Redirect:         redirect,
		RenderSuppressed: redirect,
	}
}

func hasRole(roles []models.RoleTag, role models.RoleTag) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
