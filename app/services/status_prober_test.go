package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMarketAPI implements MarketAPI with a scriptable recruiter status.
type stubMarketAPI struct {
	MarketAPI

	mu      sync.Mutex
	status  *models.RecruiterStatus
	err     error
	calls   int
	release chan struct{}
}

func (s *stubMarketAPI) RecruiterStatus(ctx context.Context) (*models.RecruiterStatus, error) {
	s.mu.Lock()
	s.calls++
	status, err, release := s.status, s.err, s.release
	s.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
		}
	}
	if err != nil {
		return nil, err
	}
	out := *status
	return &out, nil
}

func (s *stubMarketAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubMarketAPI) set(status *models.RecruiterStatus, err error) {
	s.mu.Lock()
	s.status, s.err = status, err
	s.mu.Unlock()
}

func newProberFixture(status *models.RecruiterStatus, err error) (*StatusProberImpl, *stubMarketAPI, *repository.MemorySessionStore) {
	session := repository.NewMemorySessionStore()
	session.SetToken("tok-a")
	session.SetAccount(&models.Account{ID: 1, Roles: []models.RoleTag{models.RoleJobSeeker}})

	api := &stubMarketAPI{status: status, err: err}
	prober := NewStatusProber(api, session, log.New(log.Writer(), "", 0), time.Hour).(*StatusProberImpl)
	return prober, api, session
}

func TestStatusProber_FingerprintDedup(t *testing.T) {
	prober, api, session := newProberFixture(&models.RecruiterStatus{State: models.ApprovalPending}, nil)
	ctx := context.Background()

	prober.Probe(ctx)
	prober.Probe(ctx)
	prober.Probe(ctx)
	assert.Equal(t, 1, api.callCount())

	// A role change alters the fingerprint and re-probes.
	session.PatchAccount(func(a *models.Account) *models.Account {
		return a.WithRole(models.RoleRecruiterPending, true)
	})
	prober.Probe(ctx)
	assert.Equal(t, 2, api.callCount())

	// A token change does too.
	session.SetToken("tok-b")
	prober.Probe(ctx)
	assert.Equal(t, 3, api.callCount())
}

func TestStatusProber_SuccessCachesStatus(t *testing.T) {
	companyID := int64(12)
	prober, _, _ := newProberFixture(&models.RecruiterStatus{State: models.ApprovalApproved, CompanyID: &companyID}, nil)

	assert.True(t, prober.Loading())
	assert.Nil(t, prober.Status())

	prober.Probe(context.Background())

	assert.False(t, prober.Loading())
	status := prober.Status()
	require.NotNil(t, status)
	assert.Equal(t, models.ApprovalApproved, status.State)
	require.NotNil(t, status.CompanyID)
	assert.Equal(t, companyID, *status.CompanyID)
}

func TestStatusProber_NotFoundResetsFingerprint(t *testing.T) {
	prober, api, _ := newProberFixture(&models.RecruiterStatus{RegistrationMissing: true}, nil)
	ctx := context.Background()

	prober.Probe(ctx)
	status := prober.Status()
	require.NotNil(t, status)
	assert.True(t, status.RegistrationMissing)

	// Identical session, but a not-found result must not be sticky.
	prober.Probe(ctx)
	assert.Equal(t, 2, api.callCount())
}

func TestStatusProber_NotFoundWithPendingRoleCoercedToPending(t *testing.T) {
	prober, api, session := newProberFixture(&models.RecruiterStatus{RegistrationMissing: true}, nil)
	session.PatchAccount(func(a *models.Account) *models.Account {
		return a.WithRole(models.RoleRecruiterPending, false)
	})

	prober.Probe(context.Background())

	status := prober.Status()
	require.NotNil(t, status)
	assert.False(t, status.RegistrationMissing)
	assert.Equal(t, models.ApprovalPending, status.State)

	// Coerced pending keeps the fingerprint, so no re-probe on the same session.
	prober.Probe(context.Background())
	assert.Equal(t, 1, api.callCount())
}

func TestStatusProber_TransientErrorKeepsFingerprint(t *testing.T) {
	prober, api, _ := newProberFixture(nil, errors.New("connection refused"))
	ctx := context.Background()

	prober.Probe(ctx)
	assert.Nil(t, prober.Status())
	// A finished failure is not "loading": callers must be able to tell
	// attempted-and-failed from not-yet-attempted and fall back.
	assert.False(t, prober.Loading())
	assert.Error(t, prober.LastError())

	// Same fingerprint: no hot-loop retry on every store change.
	prober.Probe(ctx)
	assert.Equal(t, 1, api.callCount())

	// ForceProbe bypasses the fingerprint after the upstream recovers.
	api.set(&models.RecruiterStatus{State: models.ApprovalPending}, nil)
	prober.ForceProbe(ctx)
	require.NotNil(t, prober.Status())
	assert.Equal(t, models.ApprovalPending, prober.Status().State)
	assert.NoError(t, prober.LastError())
}

func TestStatusProber_InFlightProbesDropped(t *testing.T) {
	prober, api, _ := newProberFixture(&models.RecruiterStatus{State: models.ApprovalPending}, nil)
	release := make(chan struct{})
	api.mu.Lock()
	api.release = release
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		prober.ForceProbe(context.Background())
		close(done)
	}()

	// Wait for the probe to be in flight, then hammer it.
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, time.Millisecond)
	prober.ForceProbe(context.Background())
	prober.Probe(context.Background())
	assert.Equal(t, 1, api.callCount())

	close(release)
	<-done
	require.NotNil(t, prober.Status())
}

func TestStatusProber_CancelledProbeNeverApplies(t *testing.T) {
	prober, api, _ := newProberFixture(&models.RecruiterStatus{State: models.ApprovalApproved}, nil)
	release := make(chan struct{})
	api.mu.Lock()
	api.release = release
	api.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		prober.ForceProbe(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Nil(t, prober.Status())
	assert.True(t, prober.Loading())
	close(release)
}

func TestStatusProber_PollingIgnoresFingerprintAndStops(t *testing.T) {
	prober, api, _ := newProberFixture(&models.RecruiterStatus{State: models.ApprovalPending}, nil)
	prober.interval = 5 * time.Millisecond

	stop := prober.StartPolling(context.Background())
	require.Eventually(t, func() bool { return api.callCount() >= 3 }, time.Second, time.Millisecond)
	stop()

	settled := api.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, api.callCount(), settled+1)
}

func TestStatusProber_SubscribeAndReset(t *testing.T) {
	prober, _, _ := newProberFixture(&models.RecruiterStatus{State: models.ApprovalPending}, nil)

	var calls int
	defer prober.Subscribe(func() { calls++ })()

	prober.Probe(context.Background())
	assert.Equal(t, 1, calls)

	prober.Reset()
	assert.Equal(t, 2, calls)
	assert.Nil(t, prober.Status())
	assert.True(t, prober.Loading())

	// After reset the same session probes again.
	prober.Probe(context.Background())
	assert.NotNil(t, prober.Status())
}
