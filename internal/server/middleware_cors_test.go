package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"blizz/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	webOrigin   = "http://localhost:5173"
	globalLimit = 300
)

func newMiddlewareApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: webOrigin}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Post("/api/highlights/:id/view", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"views_count": 1})
	})
	return app
}

func sendFromWeb(t *testing.T, app *fiber.App, method string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/api/highlights/1/view", nil)
	req.Header.Set("Origin", webOrigin)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestSetupMiddleware_GlobalLimiter(t *testing.T) {
	app := newMiddlewareApp(t)

	for i := 0; i < globalLimit; i++ {
		resp := sendFromWeb(t, app, http.MethodPost, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	t.Run("limited response keeps CORS headers", func(t *testing.T) {
		resp := sendFromWeb(t, app, http.MethodPost, nil)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, webOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is not limited", func(t *testing.T) {
		resp := sendFromWeb(t, app, http.MethodOptions, map[string]string{
			"Access-Control-Request-Method":  http.MethodPost,
			"Access-Control-Request-Headers": "authorization,content-type",
		})
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, webOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestSetupMiddleware_MediaEmbeddableCrossOrigin(t *testing.T) {
	app := newMiddlewareApp(t)

	resp := sendFromWeb(t, app, http.MethodPost, nil)
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
