package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/accounts"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthHandler struct {
	Accounts        *accounts.Service
	JWTSecret       string
	Expires         int
	Timeout         time.Duration
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func shortCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

// GoogleStart redirects to Google's consent page. ?role= picks the role of a
// newly created account, ?next= the frontend path to land on afterwards.
func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	st := randomState(32)

	shortCookie(c, "oauth_state", st, 10*60)
	shortCookie(c, "oauth_next", c.Query("next", "/"), 10*60)
	shortCookie(c, "oauth_role", c.Query("role", string(models.RoleClient)), 10*60)

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code/state")
	}

	stCookie := c.Cookies("oauth_state")
	if stCookie == "" || stCookie != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
	}
	next := c.Cookies("oauth_next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	role := models.Role(c.Cookies("oauth_role"))

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	tok, err := h.oauthCfg().Exchange(ctx, code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to exchange code")
	}

	resp, err := h.oauthCfg().Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).SendString("Failed to fetch userinfo")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return c.Status(fiber.StatusBadGateway).SendString("Failed to decode userinfo")
	}
	if !gu.VerifiedEmail {
		return h.back(c, "/auth/login?err="+url.QueryEscape("Google email is not verified"))
	}

	u, err := h.Accounts.UpsertGoogleUser(ctx, accounts.GoogleProfile{
		GoogleID: gu.ID,
		Email:    gu.Email,
		Name:     gu.Name,
		Avatar:   gu.Picture,
	}, role)
	if err != nil {
		log.Printf("[auth] google sign-in for %s: %v", gu.Email, err)
		return h.back(c, "/auth/login?err="+url.QueryEscape(messageOf(err)))
	}

	jwtToken, err := signFor(h.JWTSecret, u, h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to sign jwt")
	}
	setSessionCookie(c, jwtToken, h.Expires)

	shortCookie(c, "oauth_state", "", -1)
	shortCookie(c, "oauth_next", "", -1)
	shortCookie(c, "oauth_role", "", -1)

	return h.back(c, next)
}

func (h *GoogleOAuthHandler) back(c *fiber.Ctx, path string) error {
	return c.Redirect(h.FrontendBaseURL+path, http.StatusTemporaryRedirect)
}
