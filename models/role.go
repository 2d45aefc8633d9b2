// Package models contains domain entities and value types for the onboarding engine
package models

import (
	"fmt"
	"sort"
)

// RoleTag identifies one of the marketplace account roles. An account with
// none of these tags is a plain user.
type RoleTag string

const (
	RoleJobSeeker        RoleTag = "JOB_SEEKER"
	RoleRecruiter        RoleTag = "RECRUITER"
	RoleRecruiterPending RoleTag = "RECRUITER_PENDING"
)

// ParseRole converts a raw string to a RoleTag, returning an error for
// unknown values.
func ParseRole(s string) (RoleTag, error) {
	r := RoleTag(s)
	switch r {
	case RoleJobSeeker, RoleRecruiter, RoleRecruiterPending:
		return r, nil
	}
	return "", fmt.Errorf("unknown role tag %q", s)
}

// RoleNames converts role tags to their string form, preserving order.
func RoleNames(roles []RoleTag) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// SortedRoleNames returns the role names in a canonical order, suitable for
// building probe fingerprints.
func SortedRoleNames(roles []RoleTag) []string {
	out := RoleNames(roles)
	sort.Strings(out)
	return out
}
