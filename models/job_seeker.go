package models

import "time"

// JobSeekerProfile is the canonical job-seeker record as served by the
// marketplace backend. The engine only ever checks for its existence and
// shows pieces of it in dialogs; the backend remains the authority.
type JobSeekerProfile struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Headline  string    `json:"headline,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OnlineCV is the structured CV record kept by the backend. The apply flow
// reuses the latest one when present instead of forcing a re-upload.
type OnlineCV struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"account_id"`
	FileKey    string    `json:"file_key,omitempty"`
	RawText    string    `json:"raw_text,omitempty"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Headline   string    `json:"headline,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	YearsOfExp int       `json:"years_of_experience,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Application is the record returned by the apply endpoint.
type Application struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"job_id"`
	ParsedCVID int64     `json:"parsed_cv_id"`
	CreatedAt  time.Time `json:"created_at"`
}
