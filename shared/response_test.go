package shared

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler fiber.Handler) (int, Response) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed Response
	require.NoError(t, json.Unmarshal(body, &parsed))
	return resp.StatusCode, parsed
}

func TestResponseOK(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ResponseOK(c, "pong")
	})

	assert.Equal(t, 200, status)
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, "Success", body.Message)
	assert.Equal(t, "pong", body.Data)
}

func TestResponseOKNilDataFastPath(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ResponseOK(c, nil)
	})

	assert.Equal(t, 200, status)
	assert.Equal(t, "Success", body.Message)
	assert.Nil(t, body.Data)
}

func TestResponseJSONCustomMessage(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ResponseJSON(c, 201, "Account created", map[string]string{"id": "abc"})
	})

	assert.Equal(t, 201, status)
	assert.Equal(t, 201, body.Code)
	assert.Equal(t, "Account created", body.Message)
}

func TestResponseErrors(t *testing.T) {
	status, body := doRequest(t, func(c *fiber.Ctx) error {
		return ResponseNotFound(c)
	})
	assert.Equal(t, 404, status)
	assert.Equal(t, "Not Found", body.Message)

	status, body = doRequest(t, func(c *fiber.Ctx) error {
		return ResponseBadRequest(c, "missing field")
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "missing field", body.Message)

	status, body = doRequest(t, func(c *fiber.Ctx) error {
		return ResponseInternalError(c)
	})
	assert.Equal(t, 500, status)
	assert.Equal(t, "Internal Server Error", body.Message)
}
