package dto

// GateRequest opens a profile gate for an intent.
type GateRequest struct {
	Intent   string `json:"intent" validate:"required,oneof=APPLY_JOB OPEN_PROFILE FAVORITE_JOB"`
	JobID    int64  `json:"job_id,omitempty" validate:"required_if=Intent APPLY_JOB"`
	JobTitle string `json:"job_title,omitempty"`
}

// GateResponse reports how (or whether) the gate settled.
type GateResponse struct {
	// Settled is false while the create-profile dialog is waiting on the
	// user; the final result arrives through a later submit or dismiss.
	Settled    bool `json:"settled"`
	HasProfile bool `json:"has_profile"`
}

// ProfileSubmitRequest carries the create-profile dialog form.
type ProfileSubmitRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=6,max=32"`
	Headline string `json:"headline,omitempty" validate:"omitempty,max=160"`
	City     string `json:"city,omitempty" validate:"omitempty,max=80"`
}

// ApplyConfirmRequest accepts or declines reusing the saved CV.
type ApplyConfirmRequest struct {
	Accept bool `json:"accept"`
}

// ApplyCVRequest submits the edited CV form from the editor dialog.
type ApplyCVRequest struct {
	FullName   string   `json:"full_name" validate:"required,min=2,max=120"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone,omitempty" validate:"omitempty,min=6,max=32"`
	Headline   string   `json:"headline,omitempty" validate:"omitempty,max=160"`
	Summary    string   `json:"summary,omitempty" validate:"omitempty,max=4000"`
	Skills     []string `json:"skills,omitempty" validate:"omitempty,dive,min=1,max=64"`
	YearsOfExp int      `json:"years_of_experience,omitempty" validate:"omitempty,min=0,max=80"`
	FileKey    string   `json:"file_key,omitempty"`
	RawText    string   `json:"raw_text,omitempty"`
}

// ApplyUploadRequest uploads a raw CV document for parsing.
type ApplyUploadRequest struct {
	FileName string `json:"file_name" validate:"required"`
	Content  []byte `json:"content" validate:"required"`
}

// ParsedCVResponse returns the parsed draft that fills the editor form. The
// file key and raw text round-trip through the client into ApplyCVRequest.
type ParsedCVResponse struct {
	FileKey    string   `json:"file_key,omitempty"`
	RawText    string   `json:"raw_text,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Headline   string   `json:"headline,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	YearsOfExp int      `json:"years_of_experience,omitempty"`
}

// ApplyStateResponse reports the apply sub-flow state.
type ApplyStateResponse struct {
	State    string `json:"state"`
	JobID    int64  `json:"job_id,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
}
