package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

func setupActivityService(t *testing.T) (ActivityService, repository.ActivityLogRepository) {
	t.Helper()

	db := openTestDB(t, "activity")
	repo := repository.NewActivityLogRepository(db)
	return NewActivityService(repo, testLogger()), repo
}

func TestActivityServiceRecordPersistsAsync(t *testing.T) {
	svc, repo := setupActivityService(t)

	svc.Record(ActivityEntry{
		ActorID:     1,
		ActorName:   "Admin",
		ActorRole:   models.RoleAdmin,
		Action:      models.ActionCreate,
		Module:      "users",
		Description: "created a user",
		Details:     map[string]interface{}{"user_id": 2},
	})

	require.Eventually(t, func() bool {
		entries, total, err := repo.List(context.Background(), repository.ActivityLogFilter{Page: 1, Limit: 10})
		return err == nil && total == 1 && len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entries, _, err := repo.List(context.Background(), repository.ActivityLogFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, "Admin", entries[0].ActorName)
	require.Equal(t, models.ActionCreate, entries[0].Action)
}

func TestActivityServiceRecordDefaultsAction(t *testing.T) {
	svc, repo := setupActivityService(t)

	svc.Record(ActivityEntry{ActorID: 1, ActorName: "Someone", Module: "misc"})

	require.Eventually(t, func() bool {
		_, total, err := repo.List(context.Background(), repository.ActivityLogFilter{Page: 1, Limit: 10})
		return err == nil && total == 1
	}, 2*time.Second, 10*time.Millisecond)

	entries, _, err := repo.List(context.Background(), repository.ActivityLogFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, models.ActionOther, entries[0].Action)
}

func TestActivityServiceListFilters(t *testing.T) {
	svc, repo := setupActivityService(t)

	seed := []models.ActivityLog{
		{ActorID: 1, ActorName: "Admin", Action: models.ActionCreate, Module: "users", Description: "created bob"},
		{ActorID: 1, ActorName: "Admin", Action: models.ActionDelete, Module: "students", Description: "deleted record"},
		{ActorID: 2, ActorName: "Super", Action: models.ActionLogin, Module: "auth", Description: "Super logged in"},
	}
	for i := range seed {
		require.NoError(t, repo.Create(context.Background(), &seed[i]))
	}

	byModule, pagination, err := svc.List(context.Background(), repository.ActivityLogFilter{Module: "users"})
	require.NoError(t, err)
	require.Len(t, byModule, 1)
	require.Equal(t, int64(1), pagination.Total)

	byAction, _, err := svc.List(context.Background(), repository.ActivityLogFilter{Action: models.ActionLogin})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	require.Equal(t, "Super", byAction[0].ActorName)

	bySearch, _, err := svc.List(context.Background(), repository.ActivityLogFilter{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	all, pagination, err := svc.List(context.Background(), repository.ActivityLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 1, pagination.Page)
}
