package dto

// APIResponse is the envelope every handler returns, success and failure
// alike. Data and Error are mutually exclusive; Message is human-readable
// and safe to show in a toast.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail is the machine-readable half of a failed APIResponse. Clients
// branch on Code; Details carries whatever context the handler had, often
// the current flow state so the client can resynchronize.
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}
