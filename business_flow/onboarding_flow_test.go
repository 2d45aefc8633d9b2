package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onboardingFixture(api *flowStubAPI) (OnboardingFlow, *repository.MemorySessionStore, *fakeProber, *services.CollectingNotifier) {
	session := repository.NewMemorySessionStore()
	prober := &fakeProber{}
	notifier := services.NewCollectingNotifier()
	flow := NewOnboardingFlow(session, services.NewTokenService(), api, prober, notifier, nil, nil)
	return flow, session, prober, notifier
}

func sessionToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestOnboardingFlow_BeginSession(t *testing.T) {
	flow, session, _, _ := onboardingFixture(&flowStubAPI{})

	token := sessionToken(t, jwt.MapClaims{
		"account_id": 42,
		"email":      "r@example.com",
		"roles":      []string{"RECRUITER"},
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	account, err := flow.BeginSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.ID)
	assert.Equal(t, token, session.Token())
	require.NotNil(t, session.Account())
	assert.True(t, session.Account().HasRole(models.RoleRecruiter))
	assert.False(t, session.AuthFailed())
}

func TestOnboardingFlow_BeginSessionRejectsBadTokens(t *testing.T) {
	flow, session, _, _ := onboardingFixture(&flowStubAPI{})
	ctx := context.Background()

	_, err := flow.BeginSession(ctx, "garbage")
	assert.Error(t, err)

	expired := sessionToken(t, jwt.MapClaims{
		"account_id": 42,
		"exp":        time.Now().Add(-time.Minute).Unix(),
	})
	_, err = flow.BeginSession(ctx, expired)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, session.Token())
}

func TestOnboardingFlow_EndSessionClearsEverything(t *testing.T) {
	flow, session, prober, _ := onboardingFixture(&flowStubAPI{})
	token := sessionToken(t, jwt.MapClaims{"account_id": 42})
	_, err := flow.BeginSession(context.Background(), token)
	require.NoError(t, err)
	session.SetConsultationSubmitted(true)

	flow.EndSession(context.Background())

	assert.Empty(t, session.Token())
	assert.Nil(t, session.Account())
	assert.False(t, session.Flags().ConsultationSubmitted)
	assert.True(t, prober.Loading())
}

func TestOnboardingFlow_SubmitConsultation(t *testing.T) {
	t.Run("records the need and flips the flag", func(t *testing.T) {
		api := &flowStubAPI{}
		flow, session, _, _ := onboardingFixture(api)
		session.SetToken("tok")

		require.NoError(t, flow.SubmitConsultation(context.Background(), "hiring 3 engineers"))
		assert.Equal(t, []string{"hiring 3 engineers"}, api.consultationNeeds)
		assert.True(t, session.Flags().ConsultationSubmitted)
	})

	t.Run("rejects an empty need", func(t *testing.T) {
		flow, session, _, _ := onboardingFixture(&flowStubAPI{})
		session.SetToken("tok")
		assert.ErrorIs(t, flow.SubmitConsultation(context.Background(), ""), ErrConsultationRequired)
	})

	t.Run("keeps the flag clear on upstream failure", func(t *testing.T) {
		api := &flowStubAPI{consultationErr: &services.APIError{StatusCode: 500, Message: "boom"}}
		flow, session, _, notifier := onboardingFixture(api)
		session.SetToken("tok")

		err := flow.SubmitConsultation(context.Background(), "need")
		require.Error(t, err)
		assert.False(t, session.Flags().ConsultationSubmitted)
		assert.NotEmpty(t, notifier.Peek())
	})

	t.Run("requires a session", func(t *testing.T) {
		flow, _, _, _ := onboardingFixture(&flowStubAPI{})
		assert.ErrorIs(t, flow.SubmitConsultation(context.Background(), "need"), ErrNotAuthenticated)
	})
}

func TestOnboardingFlow_SetCompanySource(t *testing.T) {
	flow, session, _, _ := onboardingFixture(&flowStubAPI{})
	session.SetToken("tok")

	require.NoError(t, flow.SetCompanySource(context.Background(), models.CompanySourceNew))
	assert.Equal(t, models.CompanySourceNew, session.Flags().CompanySource)

	assert.Error(t, flow.SetCompanySource(context.Background(), models.CompanySource("bogus")))
	assert.Error(t, flow.SetCompanySource(context.Background(), models.CompanySourceUnset))
}
