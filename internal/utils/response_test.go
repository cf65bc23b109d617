package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/kavyadav/adminhub-api/internal/utils"
)

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"hello": "world"})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload utils.APIResponse
	decode(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
}

func TestSendErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "User not found")
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var payload utils.APIResponse
	decode(t, resp, &payload)
	require.False(t, payload.Success)
	require.Equal(t, "User not found", payload.Message)
	require.Nil(t, payload.Data)
}

func TestSendValidationErrorCarriesFieldMap(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendValidationError(c, map[string][]string{
			"email": {"must be a valid email address"},
		})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload utils.APIResponse
	decode(t, resp, &payload)
	require.False(t, payload.Success)
	require.Equal(t, "VALIDATION_ERROR", payload.Error)
	require.Equal(t, []string{"must be a valid email address"}, payload.Errors["email"])
}

func TestSendPaginatedMetadata(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendPaginated(c, "items", []int{1, 2, 3}, utils.NewPagination(2, 10, 35))
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload utils.PaginatedResponse
	decode(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, 2, payload.Pagination.Page)
	require.Equal(t, int64(35), payload.Pagination.Total)
	require.Equal(t, 4, payload.Pagination.TotalPages)
}

func TestNewPagination(t *testing.T) {
	p := utils.NewPagination(0, 10, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 1, p.TotalPages)

	p = utils.NewPagination(1, 10, 10)
	require.Equal(t, 1, p.TotalPages)

	p = utils.NewPagination(1, 10, 11)
	require.Equal(t, 2, p.TotalPages)
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
