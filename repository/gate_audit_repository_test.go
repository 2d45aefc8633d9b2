package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirelane/onboarding-engine/models"
	apptesting "github.com/hirelane/onboarding-engine/testing"
	"github.com/hirelane/onboarding-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuditRepo(t *testing.T) (GateAuditLogRepository, *apptesting.TestFixtures) {
	t.Helper()

	tdb, err := apptesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = tdb.TeardownTestDB()
	})

	return NewGateAuditLogRepository(tdb.DB), apptesting.NewTestFixtures(tdb)
}

func TestGateAuditLogRepository_Save(t *testing.T) {
	repo, _ := setupAuditRepo(t)
	ctx := apptesting.CreateTestContext()

	accountID := int64(42)
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		AccountID:     &accountID,
		Action:        models.AuditActionStageResolved,
		Stage:         string(models.StageActive),
		Roles:         []string{"RECRUITER"},
		Path:          utils.ToPtr("/pending-approval"),
		TargetPath:    utils.ToPtr("/dashboard"),
		Success:       utils.ToPtr(true),
	}

	require.NoError(t, repo.Save(ctx, entry))
	assert.NotZero(t, entry.ID)

	got, err := repo.ListByAccount(ctx, accountID, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.AuditActionStageResolved, got[0].Action)
	assert.Equal(t, []string{"RECRUITER"}, []string(got[0].Roles))
	assert.False(t, got[0].IsFailed())
}

func TestGateAuditLogRepository_ByFilter(t *testing.T) {
	repo, fixtures := setupAuditRepo(t)
	ctx := apptesting.CreateTestContext()

	_, err := fixtures.CreateStageSequence(1, string(models.StageAwaitingApproval), "/dashboard", "/pending-approval")
	require.NoError(t, err)
	_, err = fixtures.CreateFailedGate(1, models.IntentApplyJob, "profile create failed")
	require.NoError(t, err)
	_, err = fixtures.CreateAuditEntry(2, models.AuditActionSessionStarted, true)
	require.NoError(t, err)

	t.Run("filters by account", func(t *testing.T) {
		got, err := repo.ListByAccount(ctx, 1, 10, 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("filters by action", func(t *testing.T) {
		got, err := repo.ByFilter(ctx, models.GateAuditLogFilter{
			Action: utils.ToPtr(models.AuditActionRedirectIssued),
		}, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "/pending-approval", *got[0].TargetPath)
	})

	t.Run("filters failures", func(t *testing.T) {
		got, err := repo.ByFilter(ctx, models.GateAuditLogFilter{
			Success: utils.ToPtr(false),
		}, 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsFailed())
		assert.Equal(t, string(models.IntentApplyJob), *got[0].Detail)
	})

	t.Run("respects limit and ordering", func(t *testing.T) {
		got, err := repo.ByFilter(ctx, models.GateAuditLogFilter{AccountID: utils.ToPtr(int64(1))}, 2, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, !got[0].CreatedAt.Before(got[1].CreatedAt))
	})
}

func TestGateAuditLogRepository_TimeWindow(t *testing.T) {
	repo, fixtures := setupAuditRepo(t)
	ctx := apptesting.CreateTestContext()

	_, err := fixtures.CreateAgedEntry(7, models.AuditActionGateOpened, 48*time.Hour)
	require.NoError(t, err)
	_, err = fixtures.CreateAuditEntry(7, models.AuditActionGateResolved, true)
	require.NoError(t, err)

	cutoff := utils.UTCNow().Add(-24 * time.Hour)
	got, err := repo.ByFilter(ctx, models.GateAuditLogFilter{
		AccountID:    utils.ToPtr(int64(7)),
		CreatedAfter: &cutoff,
	}, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.AuditActionGateResolved, got[0].Action)
}
