package dto

// StageRequest asks the engine where the user stands for a dashboard.
type StageRequest struct {
	Path      string `query:"path" json:"path" validate:"required"`
	Dashboard string `query:"dashboard" json:"dashboard" validate:"required,oneof=recruiter job-seeker"`
}

// StageResponse mirrors the guard's decision.
type StageResponse struct {
	Stage            string `json:"stage,omitempty"`
	TargetPath       string `json:"target_path,omitempty"`
	Redirect         bool   `json:"redirect"`
	RenderSuppressed bool   `json:"render_suppressed"`
	Pending          bool   `json:"pending"`
}

// ConsultationRequest carries the recruiter's consultation form.
type ConsultationRequest struct {
	Need string `json:"need" validate:"required,min=3,max=2000"`
}

// CompanySourceRequest records the chosen company-attachment path.
type CompanySourceRequest struct {
	Source string `json:"source" validate:"required,oneof=existing new"`
}
