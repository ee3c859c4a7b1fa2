package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/accounts"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
)

type UserHandler struct {
	Accounts *accounts.Service
	Notifier *notifications.Dispatcher
	Timeout  time.Duration
}

func NewUserHandler(a *accounts.Service, n *notifications.Dispatcher, timeout time.Duration) *UserHandler {
	return &UserHandler{Accounts: a, Notifier: n, Timeout: timeout}
}

type ProfileReq struct {
	Name       *string                `json:"name"`
	Bio        *string                `json:"bio"`
	Skills     []string               `json:"skills"`
	Portfolio  []models.PortfolioItem `json:"portfolio"`
	HourlyRate *float64               `json:"hourlyRate"`
	Location   *string                `json:"location"`
	Avatar     *string                `json:"avatar"`
}

func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	d, err := h.Accounts.Dashboard(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", d)
}

func (h *UserHandler) Notifications(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	inbox, err := h.Notifier.List(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", inbox)
}

func (h *UserHandler) MarkNotificationsRead(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	n, err := h.Notifier.MarkAllRead(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Notifications marked as read", fiber.Map{"updated": n})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req ProfileReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, uid, accounts.ProfileInput{
		Name:       req.Name,
		Bio:        req.Bio,
		Skills:     req.Skills,
		Portfolio:  req.Portfolio,
		HourlyRate: req.HourlyRate,
		Location:   req.Location,
		Avatar:     req.Avatar,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Profile updated", u)
}

// Profile is the public view of any user.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Accounts.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", u)
}
