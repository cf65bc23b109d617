package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kavyadav/adminhub-api/internal/config"
	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/handler"
	"github.com/kavyadav/adminhub-api/internal/middleware"
	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/router"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/storage"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

const testSecret = "integration-secret"

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:adminhub_e2e_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Notification{},
		&models.ActivityLog{},
		&models.Settings{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, nil, "adminhub", nil, logger)
	uploadService := service.NewUploadService(files, 2, 5, 10, logger)
	authService := service.NewAuthService(userRepo, activityService, notificationService, testSecret, time.Hour, logger)
	userService := service.NewUserService(userRepo, activityService, notificationService, logger)
	profileService := service.NewProfileService(userRepo, uploadService, activityService, logger)
	studentService := service.NewStudentService(studentRepo, uploadService, activityService, logger)
	settingsService := service.NewSettingsService(settingsRepo, activityService, logger)
	reportService := service.NewReportService(userRepo, activityRepo, activityService, logger)
	dashboardService := service.NewDashboardService(userRepo, activityRepo, nil, "adminhub", time.Minute, logger)

	require.NoError(t, service.NewSeedService(userRepo, logger).Run(context.Background()))

	cfg := config.Config{AppName: "AdminHub Test", AppEnv: "test", JWTSecret: testSecret}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, validate, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, validate, logger),
		UserHandler:         handler.NewUserHandler(userService, validate, logger),
		StudentHandler:      handler.NewStudentHandler(studentService, validate, logger),
		SettingsHandler:     handler.NewSettingsHandler(settingsService, validate, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		ActivityLogHandler:  handler.NewActivityLogHandler(activityService, logger),
		ReportHandler:       handler.NewReportHandler(reportService, logger),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		Authenticate:        middleware.Authenticate(testSecret, userRepo),
	})

	return app
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	body, err := json.Marshal(dto.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decode(t, resp, &payload)
	require.True(t, payload.Success)
	require.NotEmpty(t, payload.Data.Token)
	return payload.Data.Token
}

func authedRequest(method, path, token string, body []byte) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestAdminPanelEndToEndFlow(t *testing.T) {
	app := setupApp(t)

	superToken := login(t, app, "superadmin@admin.com", "SuperAdmin@123")

	// Step 1: super admin creates a deactivated account.
	createBody, err := json.Marshal(dto.CreateUserRequest{
		Name:     "Integration User",
		Email:    "integration@example.com",
		Password: "Integration@123",
		Role:     "user",
		Status:   "inactive",
	})
	require.NoError(t, err)

	resp, err := app.Test(authedRequest(http.MethodPost, "/api/v1/users", superToken, createBody), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool             `json:"success"`
		Data    dto.UserResponse `json:"data"`
	}
	decode(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, "inactive", created.Data.Status)

	// Step 2: super admin sees the inactive account in the listing.
	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/users?search=integration", superToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var superList struct {
		Success    bool               `json:"success"`
		Data       []dto.UserResponse `json:"data"`
		Pagination utils.Pagination   `json:"pagination"`
	}
	decode(t, resp, &superList)
	require.Len(t, superList.Data, 1)
	require.Equal(t, int64(1), superList.Pagination.Total)

	// Step 3: a plain admin never sees inactive accounts.
	adminToken := login(t, app, "admin@admin.com", "Admin@123")

	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/users?search=integration", adminToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var adminList struct {
		Data       []dto.UserResponse `json:"data"`
		Pagination utils.Pagination   `json:"pagination"`
	}
	decode(t, resp, &adminList)
	require.Empty(t, adminList.Data)

	// Step 4: regular accounts are locked out of user management.
	userToken := login(t, app, "user@example.com", "User@123")

	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/users", userToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Step 5: the dashboard stays open to every authenticated role.
	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/dashboard/stats", userToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dashboard struct {
		Success bool                  `json:"success"`
		Data    dto.DashboardResponse `json:"data"`
	}
	decode(t, resp, &dashboard)
	require.True(t, dashboard.Success)
	require.NotEmpty(t, dashboard.Data.Stats)

	// Step 6: admin broadcasts from the user creation landed as notifications.
	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/notifications", superToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var notifications struct {
		Success bool                     `json:"success"`
		Data    dto.NotificationListData `json:"data"`
	}
	decode(t, resp, &notifications)
	require.True(t, notifications.Success)
	require.NotEmpty(t, notifications.Data.Notifications)
	require.Positive(t, notifications.Data.UnreadCount)

	// Step 7: the audit trail records the logins and the mutation. Entries
	// are written asynchronously, so poll the endpoint.
	require.Eventually(t, func() bool {
		resp, err := app.Test(authedRequest(http.MethodGet, "/api/v1/activity-logs?module=users", superToken, nil), -1)
		if err != nil || resp.StatusCode != fiber.StatusOK {
			return false
		}
		var logs struct {
			Data []dto.ActivityLogResponse `json:"data"`
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&logs); err != nil {
			return false
		}
		return len(logs.Data) > 0
	}, 2*time.Second, 50*time.Millisecond)

	// Step 8: reports stay super admin only.
	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/reports/stats", adminToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(authedRequest(http.MethodGet, "/api/v1/reports/stats", superToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats struct {
		Success bool                    `json:"success"`
		Data    dto.ReportStatsResponse `json:"data"`
	}
	decode(t, resp, &stats)
	require.True(t, stats.Success)
	require.GreaterOrEqual(t, stats.Data.Users.Total, int64(4))
}
