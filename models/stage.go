package models

// Stage is the authoritative onboarding phase derived for the current user.
// It is recomputed from the role snapshot, the remote status and the local
// flags on every relevant input change and never cached across navigations.
//
// Progression for a recruiter upgrade:
//
//	UNAUTHENTICATED ──► AWAITING_UPGRADE ──► AWAITING_CONSULTATION ──►
//	AWAITING_APPROVAL ──► ACTIVE
//
// A plain user heading for the job-seeker dashboard passes through
// AWAITING_LOCAL_PROFILE instead.
type Stage string

const (
	StageUnauthenticated      Stage = "UNAUTHENTICATED"
	StageAwaitingLocalProfile Stage = "AWAITING_LOCAL_PROFILE"
	StageAwaitingUpgrade      Stage = "AWAITING_UPGRADE"
	StageAwaitingConsultation Stage = "AWAITING_CONSULTATION"
	StageAwaitingApproval     Stage = "AWAITING_APPROVAL"
	StageActive               Stage = "ACTIVE"
)
