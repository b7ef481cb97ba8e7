package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/app/api"
	"docqa/app/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(token string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Use(middleware.BearerAuth(token))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"result": "ok"})
	})
	return app
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer secret", http.StatusOK},
		{"wrong token", "Bearer other", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", "secret", http.StatusUnauthorized},
		{"token with trailing junk", "Bearer secret ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp("secret")
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
