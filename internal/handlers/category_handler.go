package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/projects"
)

type CategoryHandler struct {
	Projects *projects.Service
}

func NewCategoryHandler(p *projects.Service) *CategoryHandler {
	return &CategoryHandler{Projects: p}
}

func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Projects.Categories(),
	})
}
