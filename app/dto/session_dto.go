// Package dto contains request and response structures for the HTTP facade
package dto

// BeginSessionRequest starts an engine session from a marketplace token.
type BeginSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionAccountDTO is the account snapshot returned to the client.
type SessionAccountDTO struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Provisional []string `json:"provisional,omitempty"`
}

// BeginSessionResponse is the payload returned when a session starts.
type BeginSessionResponse struct {
	Account SessionAccountDTO `json:"account"`
}
