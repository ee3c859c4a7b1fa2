package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:   fiber.StatusBadRequest,
	apperror.KindUnauthorized: fiber.StatusUnauthorized,
	apperror.KindForbidden:    fiber.StatusForbidden,
	apperror.KindNotFound:     fiber.StatusNotFound,
	apperror.KindConflict:     fiber.StatusConflict,
	apperror.KindInvalidState: fiber.StatusUnprocessableEntity,
	apperror.KindTransient:    fiber.StatusServiceUnavailable,
	apperror.KindInternal:     fiber.StatusInternalServerError,
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// fail writes err as an error envelope with the status of its kind.
func fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal("internal server error", err)
	}
	status := kindStatus[appErr.Kind]
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{"success": false, "message": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Method(), c.Path(), err)
		if appErr.Kind == apperror.KindInternal {
			body["message"] = "internal server error"
		}
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler renders errors escaping a handler chain, e.g. from middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return fail(c, err)
}

// messageOf returns the user-facing message of a service error.
func messageOf(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		return appErr.Message
	}
	return "something went wrong"
}

func badBody(c *fiber.Ctx) error {
	return fail(c, apperror.Validation("invalid body", nil))
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid "+name, apperror.FieldErrors{name: {"must be a UUID"}})
	}
	return id, nil
}

// withTimeout bounds the work done on behalf of one request.
func withTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(c.UserContext(), d)
}
