package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/bids"
)

type BidHandler struct {
	Bids    *bids.Service
	Timeout time.Duration
}

func NewBidHandler(b *bids.Service, timeout time.Duration) *BidHandler {
	return &BidHandler{Bids: b, Timeout: timeout}
}

type SubmitBidReq struct {
	ProjectID    string  `json:"projectId"`
	Amount       float64 `json:"amount"`
	DeliveryDays int     `json:"deliveryDays"`
	Proposal     string  `json:"proposal"`
}

func (h *BidHandler) Submit(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req SubmitBidReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	projectID, err := uuid.Parse(strings.TrimSpace(req.ProjectID))
	if err != nil {
		return fail(c, apperror.Validation("validation error", apperror.FieldErrors{"projectId": {"must be a UUID"}}))
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	bid, err := h.Bids.Submit(ctx, bids.SubmitInput{
		ProjectID:    projectID,
		FreelancerID: uid,
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
		Proposal:     req.Proposal,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Bid submitted", bid)
}

func (h *BidHandler) ListForProject(c *fiber.Ctx) error {
	projectID, err := paramUUID(c, "projectId")
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	rows, err := h.Bids.ListForProject(ctx, projectID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", rows)
}

func (h *BidHandler) MyBids(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	rows, err := h.Bids.ListMine(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", rows)
}
