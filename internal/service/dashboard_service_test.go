package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
)

var dashboardNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func setupDashboardService(t *testing.T, redisClient *redis.Client) (*dashboardService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, "dashboard")
	users := repository.NewUserRepository(db)
	activity := repository.NewActivityLogRepository(db)

	svc := NewDashboardService(users, activity, redisClient, "adminhub", time.Minute, testLogger()).(*dashboardService)
	svc.now = func() time.Time { return dashboardNow }
	return svc, db
}

func seedDashboardUser(t *testing.T, db *gorm.DB, email string, createdAt time.Time) {
	t.Helper()

	user := models.User{Name: email, Email: email, Password: "x", Role: models.RoleUser, Status: models.StatusActive}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("created_at", createdAt).Error)
}

func TestGrowthPercent(t *testing.T) {
	require.Equal(t, 0, growthPercent(0, 0))
	require.Equal(t, 100, growthPercent(3, 0))
	require.Equal(t, 50, growthPercent(3, 2))
	require.Equal(t, -50, growthPercent(1, 2))
	require.Equal(t, 33, growthPercent(4, 3))
}

func TestDashboardAdminStats(t *testing.T) {
	svc, db := setupDashboardService(t, nil)

	// Two signups in the trailing window, one in the window before it.
	seedDashboardUser(t, db, "recent1@example.com", dashboardNow.Add(-24*time.Hour))
	seedDashboardUser(t, db, "recent2@example.com", dashboardNow.Add(-48*time.Hour))
	seedDashboardUser(t, db, "old@example.com", dashboardNow.Add(-45*24*time.Hour))

	entry := models.ActivityLog{ActorID: 1, ActorName: "Admin", Action: models.ActionLogin, Module: "auth"}
	require.NoError(t, db.Create(&entry).Error)
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("id = ?", entry.ID).Update("created_at", dashboardNow.Add(-2*time.Hour)).Error)

	response, err := svc.Stats(context.Background(), Actor{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	require.Len(t, response.Stats, 3)
	require.Equal(t, int64(3), response.Stats[0].Value)
	require.Equal(t, int64(3), response.Stats[1].Value)
	require.Equal(t, int64(2), response.Stats[2].Value)
	require.Equal(t, "+100%", response.Stats[2].Change)

	require.Len(t, response.Chart, 7)
	require.Equal(t, "2026-03-09", response.Chart[0].Date)
	require.Equal(t, "2026-03-15", response.Chart[6].Date)
	require.Equal(t, int64(1), response.Chart[6].Activities)
	require.Equal(t, int64(1), response.Chart[6].NewUsers)

	require.Len(t, response.RecentActivities, 1)
}

func TestDashboardUserStats(t *testing.T) {
	svc, db := setupDashboardService(t, nil)

	own := models.ActivityLog{ActorID: 42, ActorName: "Me", Action: models.ActionLogin, Module: "auth"}
	foreign := models.ActivityLog{ActorID: 7, ActorName: "Them", Action: models.ActionLogin, Module: "auth"}
	require.NoError(t, db.Create(&own).Error)
	require.NoError(t, db.Create(&foreign).Error)
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("1 = 1").Update("created_at", dashboardNow.Add(-time.Hour)).Error)

	response, err := svc.Stats(context.Background(), Actor{ID: 42, Role: models.RoleUser})
	require.NoError(t, err)

	require.Len(t, response.Stats, 1)
	require.Equal(t, "My Activities", response.Stats[0].Label)
	require.Equal(t, int64(1), response.Stats[0].Value)

	require.Len(t, response.Chart, 7)
	for _, point := range response.Chart {
		require.Zero(t, point.NewUsers)
	}

	require.Len(t, response.RecentActivities, 1)
	require.Equal(t, uint(42), response.RecentActivities[0].ActorID)
}

func TestDashboardCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	svc, db := setupDashboardService(t, client)
	seedDashboardUser(t, db, "cached@example.com", dashboardNow.Add(-time.Hour))

	first, err := svc.Stats(context.Background(), Actor{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Stats[0].Value)

	// New rows are invisible while the cached payload is fresh.
	seedDashboardUser(t, db, "later@example.com", dashboardNow.Add(-time.Hour))

	second, err := svc.Stats(context.Background(), Actor{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(1), second.Stats[0].Value)

	server.FastForward(2 * time.Minute)

	third, err := svc.Stats(context.Background(), Actor{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, int64(2), third.Stats[0].Value)
}
