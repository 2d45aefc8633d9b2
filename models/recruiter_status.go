package models

import "fmt"

// ApprovalState is the server-confirmed recruiter approval phase. The zero
// value means the state has not been fetched (or the last probe failed).
type ApprovalState string

const (
	ApprovalUnknown  ApprovalState = ""
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
	ApprovalRejected ApprovalState = "REJECTED"
)

// ParseApprovalState converts a raw string to an ApprovalState, returning an
// error for unknown values. An empty string maps to ApprovalUnknown.
func ParseApprovalState(s string) (ApprovalState, error) {
	st := ApprovalState(s)
	switch st {
	case ApprovalUnknown, ApprovalPending, ApprovalApproved, ApprovalRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown approval state %q", s)
}

// RecruiterStatus is the fetched recruiter registration state. It is treated
// as the source of truth and supersedes locally cached role tags whenever
// the two disagree.
type RecruiterStatus struct {
	State     ApprovalState `json:"state"`
	CompanyID *int64        `json:"company_id,omitempty"`

	// RegistrationMissing is set when the probe saw a not-found answer; a
	// meaningful signal, distinct from a transient failure.
	RegistrationMissing bool `json:"registration_missing"`
}

// Known reports whether the status carries server-confirmed information.
func (s *RecruiterStatus) Known() bool {
	return s != nil && (s.State != ApprovalUnknown || s.RegistrationMissing)
}

// CompanyAbsent reports whether a fetched registration lacks a company
// reference, which on a non-pending account signals an incomplete (reset)
// registration.
func (s *RecruiterStatus) CompanyAbsent() bool {
	return s != nil && !s.RegistrationMissing && s.State != ApprovalUnknown && s.CompanyID == nil
}
