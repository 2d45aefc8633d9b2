package businessflow

import (
	"context"
	"sync"

	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
)

// fakeNavigator records navigations and plays back a current path.
type fakeNavigator struct {
	mu      sync.Mutex
	path    string
	visited []string
}

func (n *fakeNavigator) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.visited = append(n.visited, path)
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *fakeNavigator) visits() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visited...)
}

// fakeDialogPort records dialog open/close calls.
type fakeDialogPort struct {
	mu     sync.Mutex
	open   map[DialogKind]bool
	opened []DialogKind
}

func newFakeDialogPort() *fakeDialogPort {
	return &fakeDialogPort{open: make(map[DialogKind]bool)}
}

func (d *fakeDialogPort) Open(kind DialogKind, payload any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[kind] = true
	d.opened = append(d.opened, kind)
}

func (d *fakeDialogPort) Close(kind DialogKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[kind] = false
}

func (d *fakeDialogPort) CloseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k := range d.open {
		d.open[k] = false
	}
}

func (d *fakeDialogPort) isOpen(kind DialogKind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open[kind]
}

func (d *fakeDialogPort) openCount(kind DialogKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.opened {
		if k == kind {
			n++
		}
	}
	return n
}

// flowStubAPI scripts the MarketAPI calls the flows make.
type flowStubAPI struct {
	services.MarketAPI

	mu sync.Mutex

	profile        *models.JobSeekerProfile
	profileErr     error
	profileCalls   int
	createdProfile *models.JobSeekerProfile
	createErr      error

	latestCV  *models.OnlineCV
	latestErr error
	savedCV   *models.OnlineCV
	saveErr   error
	parsedCV  map[string]any
	applyErr  error
	applied   []int64

	consultationErr   error
	consultationNeeds []string

	status      *models.RecruiterStatus
	statusErr   error
	statusCalls int
}

func (s *flowStubAPI) JobSeekerMe(ctx context.Context) (*models.JobSeekerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileCalls++
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	if s.profile == nil {
		return nil, &services.APIError{StatusCode: 404, Message: "no profile"}
	}
	return s.profile, nil
}

func (s *flowStubAPI) CreateJobSeekerProfile(ctx context.Context, profile *models.JobSeekerProfile) (*models.JobSeekerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	created := *profile
	created.ID = 101
	s.createdProfile = &created
	return &created, nil
}

func (s *flowStubAPI) LatestOnlineCV(ctx context.Context) (*models.OnlineCV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestCV, s.latestErr
}

func (s *flowStubAPI) SaveOnlineCV(ctx context.Context, cv *models.OnlineCV) (*models.OnlineCV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	saved := *cv
	saved.ID = 77
	s.savedCV = &saved
	return &saved, nil
}

func (s *flowStubAPI) ParseCV(ctx context.Context, fileName string, content []byte) (*models.ParsedCV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cv := models.ResolveParsedFields(s.parsedCV)
	return &cv, nil
}

func (s *flowStubAPI) ApplyToJob(ctx context.Context, jobID, onlineCVID int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	s.applied = append(s.applied, jobID)
	return &models.Application{ID: 1, JobID: jobID, ParsedCVID: onlineCVID}, nil
}

func (s *flowStubAPI) SubmitConsultation(ctx context.Context, need string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consultationErr != nil {
		return s.consultationErr
	}
	s.consultationNeeds = append(s.consultationNeeds, need)
	return nil
}

func (s *flowStubAPI) RefreshToken(ctx context.Context) (string, error) {
	return "", nil
}

func (s *flowStubAPI) RecruiterStatus(ctx context.Context) (*models.RecruiterStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	out := *s.status
	return &out, nil
}

func (s *flowStubAPI) recruiterStatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// fakeProber plays back a fixed status.
type fakeProber struct {
	mu        sync.Mutex
	status    *models.RecruiterStatus
	loading   bool
	lastErr   error
	probes    int
	pollStart int
	pollStop  int
}

func (p *fakeProber) Probe(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
}

func (p *fakeProber) ForceProbe(ctx context.Context) { p.Probe(ctx) }

func (p *fakeProber) Status() *models.RecruiterStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakeProber) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *fakeProber) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *fakeProber) StartPolling(ctx context.Context) func() {
	p.mu.Lock()
	p.pollStart++
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.pollStop++
		p.mu.Unlock()
	}
}

func (p *fakeProber) Subscribe(fn func()) func() { return func() {} }

func (p *fakeProber) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = nil
	p.loading = true
	p.lastErr = nil
}
