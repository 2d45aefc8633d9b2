// Package services provides external service integrations and technical concerns like upstream API access and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirelane/onboarding-engine/config"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
)

// MarketAPI is the client for the marketplace backend. Every call attaches
// the session's bearer token; a 401 trips the session auth-failure latch so
// subsequent calls short-circuit until the token is replaced.
type MarketAPI interface {
	RecruiterStatus(ctx context.Context) (*models.RecruiterStatus, error)
	SubmitConsultation(ctx context.Context, need string) error
	JobSeekerMe(ctx context.Context) (*models.JobSeekerProfile, error)
	CreateJobSeekerProfile(ctx context.Context, profile *models.JobSeekerProfile) (*models.JobSeekerProfile, error)
	ParseCV(ctx context.Context, fileName string, content []byte) (*models.ParsedCV, error)
	SaveOnlineCV(ctx context.Context, cv *models.OnlineCV) (*models.OnlineCV, error)
	LatestOnlineCV(ctx context.Context) (*models.OnlineCV, error)
	ApplyToJob(ctx context.Context, jobID, onlineCVID int64) (*models.Application, error)
	RefreshAccount(ctx context.Context) (*models.Account, error)
	RefreshToken(ctx context.Context) (string, error)
}

// APIError carries the upstream response status and the textual error code
// extracted from the body, when one was present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the error represents a missing resource. The
// backend signals this either with a plain 404 or with a textual code
// containing "not_found" on other statuses.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(e.Code), "not_found")
}

// IsUnauthorized reports whether the error represents a rejected token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// AsAPIError extracts an *APIError from err, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// ErrAuthLatched is returned without touching the network once the session's
// auth-failure latch has tripped.
var ErrAuthLatched = fmt.Errorf("session authentication latched as failed")

// MarketAPIImpl implements MarketAPI over HTTP.
type MarketAPIImpl struct {
	config  *config.UpstreamConfig
	session repository.SessionStore
	client  *http.Client
}

// NewMarketAPI creates a new marketplace API client bound to a session.
func NewMarketAPI(cfg *config.UpstreamConfig, session repository.SessionStore) MarketAPI {
	return &MarketAPIImpl{
		config:  cfg,
		session: session,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type upstreamErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (m *MarketAPIImpl) do(ctx context.Context, method, path string, payload, out any) error {
	if m.session.AuthFailed() {
		return ErrAuthLatched
	}
	token := m.session.Token()
	if token == "" {
		return ErrAuthLatched
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	url := fmt.Sprintf("%s%s", strings.TrimRight(m.config.BaseURL, "/"), path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		m.session.TripAuthFailure()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return m.readError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode upstream response: %w", err)
		}
	}
	return nil
}

func (m *MarketAPIImpl) readError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var parsed upstreamErrorBody
	if json.Unmarshal(raw, &parsed) == nil {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
		if apiErr.Code == "" {
			apiErr.Code = parsed.Error.Code
		}
		if apiErr.Message == "" {
			apiErr.Message = parsed.Error.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type recruiterStatusResponse struct {
	Status    string `json:"status"`
	CompanyID *int64 `json:"companyId,omitempty"`
}

// RecruiterStatus fetches the recruiter record for the session's account.
// A not-found answer is mapped to RegistrationMissing rather than surfaced
// as an error, since it is an expected state for fresh accounts.
func (m *MarketAPIImpl) RecruiterStatus(ctx context.Context) (*models.RecruiterStatus, error) {
	var resp recruiterStatusResponse
	err := m.do(ctx, http.MethodGet, "/recruiters/me", nil, &resp)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
			return &models.RecruiterStatus{RegistrationMissing: true}, nil
		}
		return nil, err
	}
	state, err := models.ParseApprovalState(resp.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to read recruiter status: %w", err)
	}
	return &models.RecruiterStatus{State: state, CompanyID: resp.CompanyID}, nil
}

type consultationRequest struct {
	Need string `json:"need"`
}

// SubmitConsultation records the recruiter's consultation need upstream.
func (m *MarketAPIImpl) SubmitConsultation(ctx context.Context, need string) error {
	return m.do(ctx, http.MethodPost, "/recruiters/me/consultation", consultationRequest{Need: need}, nil)
}

// CreateJobSeekerProfile creates the account's job seeker profile upstream
// and returns it with server-assigned fields filled in.
func (m *MarketAPIImpl) CreateJobSeekerProfile(ctx context.Context, profile *models.JobSeekerProfile) (*models.JobSeekerProfile, error) {
	var created models.JobSeekerProfile
	if err := m.do(ctx, http.MethodPost, "/job-seekers", profile, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type parseCVRequest struct {
	FileName string `json:"fileName"`
	File     []byte `json:"file"`
}

type parseCVResponse struct {
	FileKey    string         `json:"fileKey"`
	RawText    string         `json:"rawText"`
	ParsedData map[string]any `json:"parsedData"`
}

// ParseCV uploads a CV for extraction. The file key and raw text are taken
// verbatim; the parser is lenient about field naming inside parsedData, so
// that part is normalized before use.
func (m *MarketAPIImpl) ParseCV(ctx context.Context, fileName string, content []byte) (*models.ParsedCV, error) {
	var resp parseCVResponse
	err := m.do(ctx, http.MethodPost, "/job-seekers/cv/parse", parseCVRequest{FileName: fileName, File: content}, &resp)
	if err != nil {
		return nil, err
	}
	parsed := models.ResolveParsedFields(resp.ParsedData)
	parsed.FileKey = resp.FileKey
	parsed.RawText = resp.RawText
	return &parsed, nil
}

// JobSeekerMe fetches the account's job seeker profile. Callers are expected
// to treat a not-found APIError as "no profile yet".
func (m *MarketAPIImpl) JobSeekerMe(ctx context.Context) (*models.JobSeekerProfile, error) {
	var profile models.JobSeekerProfile
	if err := m.do(ctx, http.MethodGet, "/job-seekers/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// onlineCVParsedData is the structured half of the online-CV wire record,
// written with canonical field names.
type onlineCVParsedData struct {
	FullName   string   `json:"full_name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Headline   string   `json:"headline,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	YearsOfExp int      `json:"years_of_experience,omitempty"`
}

type saveOnlineCVRequest struct {
	FileKey    string             `json:"fileKey,omitempty"`
	RawText    string             `json:"rawText,omitempty"`
	ParsedData onlineCVParsedData `json:"parsedData"`
}

// onlineCVRecord is the stored record as the backend returns it. Its
// parsedData echoes the parser's loose field naming, so it goes through the
// same normalization as a fresh parse.
type onlineCVRecord struct {
	ID         int64          `json:"id"`
	AccountID  int64          `json:"account_id"`
	FileKey    string         `json:"fileKey"`
	RawText    string         `json:"rawText"`
	ParsedData map[string]any `json:"parsedData"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (r onlineCVRecord) toModel() *models.OnlineCV {
	parsed := models.ResolveParsedFields(r.ParsedData)
	return &models.OnlineCV{
		ID:         r.ID,
		AccountID:  r.AccountID,
		FileKey:    r.FileKey,
		RawText:    r.RawText,
		FullName:   parsed.FullName,
		Email:      parsed.Email,
		Phone:      parsed.Phone,
		Headline:   parsed.Headline,
		Summary:    parsed.Summary,
		Skills:     parsed.Skills,
		YearsOfExp: parsed.YearsOfExp,
		CreatedAt:  r.CreatedAt,
	}
}

// SaveOnlineCV stores a structured CV record together with its source file
// key and raw text, and returns it with its server-assigned id.
func (m *MarketAPIImpl) SaveOnlineCV(ctx context.Context, cv *models.OnlineCV) (*models.OnlineCV, error) {
	payload := saveOnlineCVRequest{
		FileKey: cv.FileKey,
		RawText: cv.RawText,
		ParsedData: onlineCVParsedData{
			FullName:   cv.FullName,
			Email:      cv.Email,
			Phone:      cv.Phone,
			Headline:   cv.Headline,
			Summary:    cv.Summary,
			Skills:     cv.Skills,
			YearsOfExp: cv.YearsOfExp,
		},
	}
	var saved onlineCVRecord
	if err := m.do(ctx, http.MethodPost, "/job-seekers/cv/online", payload, &saved); err != nil {
		return nil, err
	}
	return saved.toModel(), nil
}

// LatestOnlineCV fetches the most recent structured CV, or nil when the
// account has never saved one.
func (m *MarketAPIImpl) LatestOnlineCV(ctx context.Context) (*models.OnlineCV, error) {
	var record onlineCVRecord
	err := m.do(ctx, http.MethodGet, "/job-seekers/cv/online/latest", nil, &record)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}
	if record.ID == 0 {
		// The backend answers "never saved" with a null body.
		return nil, nil
	}
	return record.toModel(), nil
}

type applyRequest struct {
	ParsedCVID int64 `json:"parsedCvId"`
}

// ApplyToJob submits a job application with the given structured CV.
func (m *MarketAPIImpl) ApplyToJob(ctx context.Context, jobID, onlineCVID int64) (*models.Application, error) {
	var submitted models.Application
	if err := m.do(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/applications", jobID), applyRequest{ParsedCVID: onlineCVID}, &submitted); err != nil {
		return nil, err
	}
	return &submitted, nil
}

type accountResponse struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// RefreshAccount re-reads the account from upstream. Roles the client does
// not know are dropped.
func (m *MarketAPIImpl) RefreshAccount(ctx context.Context) (*models.Account, error) {
	var resp accountResponse
	if err := m.do(ctx, http.MethodGet, "/accounts/me", nil, &resp); err != nil {
		return nil, err
	}
	account := &models.Account{ID: resp.ID, Email: resp.Email}
	for _, name := range resp.Roles {
		if role, err := models.ParseRole(name); err == nil {
			account.Roles = append(account.Roles, role)
		}
	}
	return account, nil
}

type refreshTokenResponse struct {
	Token string `json:"token"`
}

// RefreshToken asks the backend for a token reflecting the account's current
// roles. The caller decides whether to adopt it.
func (m *MarketAPIImpl) RefreshToken(ctx context.Context) (string, error) {
	var resp refreshTokenResponse
	if err := m.do(ctx, http.MethodPost, "/auth/refresh-token", nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
