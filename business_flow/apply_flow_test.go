package businessflow

import (
	"context"
	"testing"

	"github.com/hirelane/onboarding-engine/app/services"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applyFixture struct {
	flow     ApplyFlow
	api      *flowStubAPI
	dialogs  *fakeDialogPort
	notifier *services.CollectingNotifier
}

func newApplyFixture(api *flowStubAPI) *applyFixture {
	session := repository.NewMemorySessionStore()
	session.SetToken("tok")
	session.SetAccount(&models.Account{ID: 1, Roles: []models.RoleTag{models.RoleJobSeeker}})
	dialogs := newFakeDialogPort()
	notifier := services.NewCollectingNotifier()
	return &applyFixture{
		flow:     NewApplyFlow(session, api, dialogs, notifier, nil, nil),
		api:      api,
		dialogs:  dialogs,
		notifier: notifier,
	}
}

var applyIntent = models.GateIntent{Type: models.IntentApplyJob, JobID: 31, JobTitle: "Backend Engineer"}

func TestApplyFlow_ReusePath(t *testing.T) {
	fixture := newApplyFixture(&flowStubAPI{latestCV: &models.OnlineCV{ID: 4}})
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	assert.Equal(t, ApplyStateConfirmReuse, fixture.flow.Snapshot().State)
	assert.True(t, fixture.dialogs.isOpen(DialogConfirmReuse))

	require.NoError(t, fixture.flow.ConfirmReuse(ctx, true))
	assert.Equal(t, ApplyStateDone, fixture.flow.Snapshot().State)
	assert.Equal(t, []int64{31}, fixture.api.applied)
	assert.False(t, fixture.dialogs.isOpen(DialogConfirmReuse))

	snapshot := fixture.flow.Snapshot()
	assert.Zero(t, snapshot.JobID)
	assert.Empty(t, snapshot.JobTitle)
}

func TestApplyFlow_DeclineReuseAborts(t *testing.T) {
	fixture := newApplyFixture(&flowStubAPI{latestCV: &models.OnlineCV{ID: 4}})
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	require.NoError(t, fixture.flow.ConfirmReuse(ctx, false))

	snapshot := fixture.flow.Snapshot()
	assert.Equal(t, ApplyStateCancelled, snapshot.State)
	assert.Zero(t, snapshot.JobID)
	assert.Empty(t, fixture.api.applied)
	assert.False(t, fixture.dialogs.isOpen(DialogConfirmReuse))
}

func TestApplyFlow_EditorPath(t *testing.T) {
	api := &flowStubAPI{parsedCV: map[string]any{
		"fullName":         "Dana Levi",
		"mail":             "dana@example.com",
		"skill_list":       []any{"go", "sql"},
		"experience_years": float64(4),
	}}
	fixture := newApplyFixture(api)
	ctx := context.Background()

	// No saved CV: straight to the editor.
	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	assert.Equal(t, ApplyStateEditingCV, fixture.flow.Snapshot().State)
	assert.True(t, fixture.dialogs.isOpen(DialogEditCV))

	draft, err := fixture.flow.UploadCV(ctx, "cv.pdf", []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "Dana Levi", draft.FullName)
	assert.Equal(t, []string{"go", "sql"}, draft.Skills)
	assert.Equal(t, 4, draft.YearsOfExp)

	require.NoError(t, fixture.flow.SubmitEditedCV(ctx, &models.OnlineCV{
		FullName: draft.FullName, Email: draft.Email, Skills: draft.Skills, YearsOfExp: draft.YearsOfExp,
	}))
	assert.Equal(t, ApplyStateDone, fixture.flow.Snapshot().State)
	require.NotNil(t, api.savedCV)
	assert.Equal(t, []int64{31}, api.applied)
}

func TestApplyFlow_SubmitFailureKeepsDialogOpen(t *testing.T) {
	api := &flowStubAPI{
		latestCV: &models.OnlineCV{ID: 4},
		applyErr: &services.APIError{StatusCode: 502, Message: "bad gateway"},
	}
	fixture := newApplyFixture(api)
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	err := fixture.flow.ConfirmReuse(ctx, true)
	require.Error(t, err)

	// Back at the confirm step for a retry, intent intact.
	snapshot := fixture.flow.Snapshot()
	assert.Equal(t, ApplyStateConfirmReuse, snapshot.State)
	assert.Equal(t, int64(31), snapshot.JobID)
	assert.True(t, fixture.dialogs.isOpen(DialogConfirmReuse))

	api.mu.Lock()
	api.applyErr = nil
	api.mu.Unlock()
	require.NoError(t, fixture.flow.ConfirmReuse(ctx, true))
	assert.Equal(t, ApplyStateDone, fixture.flow.Snapshot().State)
}

func TestApplyFlow_SaveFailureReturnsToEditor(t *testing.T) {
	api := &flowStubAPI{saveErr: &services.APIError{StatusCode: 500, Message: "boom"}}
	fixture := newApplyFixture(api)
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	err := fixture.flow.SubmitEditedCV(ctx, &models.OnlineCV{FullName: "Dana Levi"})
	require.Error(t, err)
	assert.Equal(t, ApplyStateEditingCV, fixture.flow.Snapshot().State)
	assert.Empty(t, api.applied)
}

func TestApplyFlow_CancelClearsDraftKeepsSavedCV(t *testing.T) {
	api := &flowStubAPI{parsedCV: map[string]any{"name": "Dana Levi"}}
	fixture := newApplyFixture(api)
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	_, err := fixture.flow.UploadCV(ctx, "cv.pdf", []byte("raw"))
	require.NoError(t, err)
	require.NotNil(t, fixture.flow.Snapshot().Draft)

	fixture.flow.Cancel(ctx)

	snapshot := fixture.flow.Snapshot()
	assert.Equal(t, ApplyStateCancelled, snapshot.State)
	assert.Zero(t, snapshot.JobID)
	assert.Empty(t, snapshot.JobTitle)
	assert.Nil(t, snapshot.Draft)
	assert.False(t, fixture.dialogs.isOpen(DialogEditCV))
}

func TestApplyFlow_InvalidTransitions(t *testing.T) {
	fixture := newApplyFixture(&flowStubAPI{latestCV: &models.OnlineCV{ID: 4}})
	ctx := context.Background()

	// Nothing started yet.
	assert.ErrorIs(t, fixture.flow.ConfirmReuse(ctx, true), ErrInvalidApplyState)
	_, err := fixture.flow.UploadCV(ctx, "cv.pdf", nil)
	assert.ErrorIs(t, err, ErrInvalidApplyState)
	assert.ErrorIs(t, fixture.flow.SubmitEditedCV(ctx, &models.OnlineCV{}), ErrInvalidApplyState)

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	// Confirm step does not accept editor submissions.
	assert.ErrorIs(t, fixture.flow.SubmitEditedCV(ctx, &models.OnlineCV{}), ErrInvalidApplyState)
	// A second Start while in progress is rejected.
	assert.ErrorIs(t, fixture.flow.Start(ctx, applyIntent), ErrInvalidApplyState)
}

func TestApplyFlow_RestartableAfterTerminalStates(t *testing.T) {
	fixture := newApplyFixture(&flowStubAPI{latestCV: &models.OnlineCV{ID: 4}})
	ctx := context.Background()

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	fixture.flow.Cancel(ctx)
	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	require.NoError(t, fixture.flow.ConfirmReuse(ctx, true))
	assert.Equal(t, ApplyStateDone, fixture.flow.Snapshot().State)

	require.NoError(t, fixture.flow.Start(ctx, applyIntent))
	assert.Equal(t, ApplyStateConfirmReuse, fixture.flow.Snapshot().State)
}
