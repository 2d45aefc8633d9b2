package utils

import (
	"time"
)

// Engine timing constants
const (
	// StatusPollInterval is how often the recruiter status is re-probed
	// while the user sits on the pending-approval page (15 seconds).
	StatusPollInterval = 15 * time.Second

	// UpstreamTimeout is the default timeout for calls against the
	// marketplace backend.
	UpstreamTimeout = 10 * time.Second

	// SessionTTL is how long a facade session (token, account blob and
	// onboarding flags) is retained in the session store.
	SessionTTL = 24 * time.Hour
)

// CORSMaxAge is how long browsers may cache preflight responses, in seconds.
const CORSMaxAge = 86400

// Context keys used for request-scoped metadata
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)
