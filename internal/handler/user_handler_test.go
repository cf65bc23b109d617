package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/handler"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

type mockUserService struct {
	lastActor  service.Actor
	lastRole   string
	lastFilter repository.UserFilter
	user       dto.UserResponse
	list       []dto.UserResponse
	err        error
}

func (m *mockUserService) Create(_ context.Context, actor service.Actor, _ dto.CreateUserRequest) (dto.UserResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Get(_ context.Context, _ uint) (dto.UserResponse, error) {
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockUserService) List(_ context.Context, callerRole string, filter repository.UserFilter) ([]dto.UserResponse, utils.Pagination, error) {
	m.lastRole = callerRole
	m.lastFilter = filter
	if m.err != nil {
		return nil, utils.Pagination{}, m.err
	}
	return m.list, utils.NewPagination(filter.Page, filter.Limit, int64(len(m.list))), nil
}

func (m *mockUserService) Update(_ context.Context, actor service.Actor, _ uint, _ dto.UpdateUserRequest) (dto.UserResponse, error) {
	m.lastActor = actor
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockUserService) Delete(_ context.Context, actor service.Actor, _ uint) error {
	m.lastActor = actor
	return m.err
}

func userTestApp(svc service.UserService) *fiber.App {
	logger := zerolog.New(io.Discard)
	h := handler.NewUserHandler(svc, validator.New(validator.WithRequiredStructEnabled()), logger)
	app := fiber.New()
	identity := func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "super_admin")
		c.Locals("user_name", "Super Administrator")
		return c.Next()
	}
	group := app.Group("/api/v1/users", identity)
	group.Post("/", h.Create)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	return app
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func TestUserHandler_CreateSuccess(t *testing.T) {
	svc := &mockUserService{user: dto.UserResponse{ID: 2, Name: "New User", Email: "new@example.com", Role: "user", Status: "active"}}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/users/", dto.CreateUserRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "Secret@123",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    dto.UserResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "User created successfully", body.Message)
	require.Equal(t, uint(2), body.Data.ID)
	require.Equal(t, "Super Administrator", svc.lastActor.Name)
}

func TestUserHandler_CreateDuplicateEmail(t *testing.T) {
	svc := &mockUserService{err: service.ErrEmailTaken}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/users/", dto.CreateUserRequest{
		Name:     "New User",
		Email:    "taken@example.com",
		Password: "Secret@123",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUserHandler_CreateValidation(t *testing.T) {
	svc := &mockUserService{}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/users/", dto.CreateUserRequest{
		Name:     "A",
		Email:    "bad",
		Password: "123",
		Role:     "owner",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	decodeResponse(t, resp, &body)
	require.Contains(t, body.Errors, "name")
	require.Contains(t, body.Errors, "email")
	require.Contains(t, body.Errors, "password")
	require.Contains(t, body.Errors, "role")
}

func TestUserHandler_ListForwardsFilter(t *testing.T) {
	svc := &mockUserService{list: []dto.UserResponse{{ID: 1}, {ID: 2}}}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/users/?page=2&limit=5&search=ana&status=inactive", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "super_admin", svc.lastRole)
	require.Equal(t, 2, svc.lastFilter.Page)
	require.Equal(t, 5, svc.lastFilter.Limit)
	require.Equal(t, "ana", svc.lastFilter.Search)
	require.Equal(t, "inactive", svc.lastFilter.Status)

	var body utils.PaginatedResponse
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, int64(2), body.Pagination.Total)
}

func TestUserHandler_ListInvalidPage(t *testing.T) {
	svc := &mockUserService{}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/users/?page=oops", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserHandler_GetNotFound(t *testing.T) {
	svc := &mockUserService{err: service.ErrUserNotFound}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/users/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUserHandler_GetInvalidID(t *testing.T) {
	svc := &mockUserService{}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/users/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserHandler_DeleteSuccess(t *testing.T) {
	svc := &mockUserService{}
	app := userTestApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/users/3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "User deleted successfully", body.Message)
}
