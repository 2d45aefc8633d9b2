package models

// CompanySource records which path the recruiter chose when attaching a
// company during the upgrade flow.
type CompanySource string

const (
	CompanySourceUnset    CompanySource = ""
	CompanySourceExisting CompanySource = "existing"
	CompanySourceNew      CompanySource = "new"
)

// LocalFlags are the two onboarding booleans persisted outside the account
// snapshot. They are set when the corresponding form is submitted and cleared
// together when the recruiter registration is detected as missing or on
// logout.
type LocalFlags struct {
	ConsultationSubmitted bool          `json:"consultation_submitted"`
	CompanySource         CompanySource `json:"company_source"`
}
