package models

import "fmt"

// IntentType tags the action a caller wants to perform once the profile
// prerequisite is satisfied.
type IntentType string

const (
	IntentApplyJob    IntentType = "APPLY_JOB"
	IntentOpenProfile IntentType = "OPEN_PROFILE"
	IntentFavoriteJob IntentType = "FAVORITE_JOB"
)

// ParseIntentType converts a raw string to an IntentType.
func ParseIntentType(s string) (IntentType, error) {
	t := IntentType(s)
	switch t {
	case IntentApplyJob, IntentOpenProfile, IntentFavoriteJob:
		return t, nil
	}
	return "", fmt.Errorf("unknown gate intent %q", s)
}

// GateIntent describes what the caller wants to do after prerequisites are
// satisfied. Created per gate call, consumed once, then discarded. JobID and
// JobTitle are only meaningful for APPLY_JOB.
type GateIntent struct {
	Type     IntentType `json:"type"`
	JobID    int64      `json:"job_id,omitempty"`
	JobTitle string     `json:"job_title,omitempty"`
}
