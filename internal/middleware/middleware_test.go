package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/utils"
)

const secret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTAuth(secret), AttachJWTLocals(), func(c *fiber.Ctx) error {
		uid, role, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": uid, "role": role})
	})
	app.Get("/clients", JWTAuth(secret), AttachJWTLocals(), RequireRoles(models.RoleClient), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := utils.SignJWT(secret, uuid.NewString(), string(role), 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestJWTAuthSources(t *testing.T) {
	t.Parallel()

	app := newApp()
	tok := token(t, models.RoleClient)

	tests := []struct {
		name string
		req  func() *http.Request
		want int
	}{
		{name: "no token", req: func() *http.Request { return httptest.NewRequest(http.MethodGet, "/me", nil) }, want: fiber.StatusUnauthorized},
		{name: "cookie", req: func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
			return r
		}, want: fiber.StatusOK},
		{name: "bearer", req: func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.Header.Set("Authorization", "Bearer "+tok)
			return r
		}, want: fiber.StatusOK},
		{name: "query", req: func() *http.Request { return httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil) }, want: fiber.StatusOK},
		{name: "garbage", req: func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.Header.Set("Authorization", "Bearer nope")
			return r
		}, want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		resp, err := app.Test(tt.req())
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if resp.StatusCode != tt.want {
			t.Fatalf("%s: status = %d, want %d", tt.name, resp.StatusCode, tt.want)
		}
	}
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	app := newApp()
	for role, want := range map[models.Role]int{
		models.RoleClient:     fiber.StatusNoContent,
		models.RoleFreelancer: fiber.StatusForbidden,
	} {
		r := httptest.NewRequest(http.MethodGet, "/clients", nil)
		r.Header.Set("Authorization", "Bearer "+token(t, role))
		resp, err := app.Test(r)
		if err != nil {
			t.Fatalf("%s: %v", role, err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: status = %d, want %d", role, resp.StatusCode, want)
		}
	}
}
