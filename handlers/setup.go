package handlers

import (
	"errors"

	"github.com/anviedo/examline/services"
	"github.com/gofiber/fiber/v2"
)

var (
	progressSvc  *services.ProgressService
	advanceSvc   *services.AdvanceService
	lifecycleSvc *services.LifecycleService
)

// Setup wires the execution engine services into the HTTP layer. Called once
// from main before routes are registered.
func Setup(progress *services.ProgressService, advance *services.AdvanceService, lifecycle *services.LifecycleService) {
	progressSvc = progress
	advanceSvc = advance
	lifecycleSvc = lifecycle
}

// serviceError maps engine error kinds onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case services.IsInvalidState(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNoPoints):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
