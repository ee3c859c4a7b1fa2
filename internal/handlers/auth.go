package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/accounts"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/utils"
)

type AuthHandler struct {
	Accounts  *accounts.Service
	JWTSecret string
	Expires   int
	Timeout   time.Duration
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / freelancer
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID     any         `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Avatar string      `json:"avatar,omitempty"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Register(ctx, accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: strings.TrimSpace(req.Password),
		Role:     req.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	return h.startSession(c, u, fiber.StatusCreated, "Registration successful")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Authenticate(ctx, req.Email, strings.TrimSpace(req.Password))
	if err != nil {
		return fail(c, err)
	}
	return h.startSession(c, u, fiber.StatusOK, "Login successful")
}

func (h *AuthHandler) startSession(c *fiber.Ctx, u *models.User, status int, message string) error {
	token, err := signFor(h.JWTSecret, u, h.Expires)
	if err != nil {
		return fail(c, err)
	}
	setSessionCookie(c, token, h.Expires)

	return ok(c, status, message, fiber.Map{
		"user":  viewOf(u),
		"token": token,
	})
}

func signFor(secret string, u *models.User, expiresMin int) (string, error) {
	return utils.SignJWT(secret, u.ID.String(), string(u.Role), expiresMin)
}

func setSessionCookie(c *fiber.Ctx, token string, expiresMin int) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   expiresMin * 60,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}

// Me returns the full profile of the caller.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Get(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", u)
}
