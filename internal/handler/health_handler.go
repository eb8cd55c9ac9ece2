package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/university-api/internal/dto"
	"github.com/noah-isme/university-api/internal/utils"
)

// Root answers the sanity-check endpoint.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendOK(c, fiber.Map{"Hello": "World"})
	}
}

// HealthCheck reports liveness without touching the store.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendOK(c, dto.MessageResponse{Message: "OK"})
	}
}
