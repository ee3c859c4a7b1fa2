package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/projects"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/selection"
)

type ProjectHandler struct {
	Projects  *projects.Service
	Selection *selection.Service
	Timeout   time.Duration
}

func NewProjectHandler(p *projects.Service, s *selection.Service, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{Projects: p, Selection: s, Timeout: timeout}
}

// ==== REQUEST STRUCTS ====

type BudgetReq struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ProjectReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Skills      []string  `json:"skills"`
	Budget      BudgetReq `json:"budget"`
	Deadline    string    `json:"deadline"` // RFC3339 or YYYY-MM-DD
}

type SelectFreelancerReq struct {
	BidID string `json:"bidId"`
}

func (r ProjectReq) input() (projects.Input, error) {
	in := projects.Input{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Skills:      r.Skills,
		Budget:      models.Budget{Min: r.Budget.Min, Max: r.Budget.Max},
	}
	if d := strings.TrimSpace(r.Deadline); d != "" {
		t, err := parseDeadline(d)
		if err != nil {
			return in, apperror.Validation("validation error", apperror.FieldErrors{"deadline": {"must be a date"}})
		}
		in.Deadline = t
	}
	return in, nil
}

func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ==== HANDLER ====

// List is the public project board.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	f := projects.Filter{
		Status:   models.ProjectStatus(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	fields := apperror.FieldErrors{}
	for name, dst := range map[string]*float64{"minBudget": &f.MinBudget, "maxBudget": &f.MaxBudget} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			fields.Add(name, "must be a non-negative number")
			continue
		}
		*dst = v
	}
	if len(fields) > 0 {
		return fail(c, apperror.Validation("validation error", fields))
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	page, err := h.Projects.List(ctx, f, c.QueryInt("page", 1), c.QueryInt("limit", projects.DefaultPageSize))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	detail, err := h.Projects.Get(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", detail)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	var req ProjectReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	p, err := h.Projects.Create(ctx, uid, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Project created", p)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req ProjectReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := req.input()
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	p, err := h.Projects.Update(ctx, id, uid, in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Project updated", p)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	if err := h.Projects.Delete(ctx, id, uid); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Project deleted",
	})
}

func (h *ProjectHandler) MyProjects(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	rows, err := h.Projects.ListMine(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", rows)
}

func (h *ProjectHandler) SelectFreelancer(c *fiber.Ctx) error {
	uid, _, err := middleware.CurrentUser(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req SelectFreelancerReq
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	bidID, err := uuid.Parse(strings.TrimSpace(req.BidID))
	if err != nil {
		return fail(c, apperror.Validation("validation error", apperror.FieldErrors{"bidId": {"must be a UUID"}}))
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	p, err := h.Selection.SelectFreelancer(ctx, id, uid, bidID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Freelancer selected", p)
}
