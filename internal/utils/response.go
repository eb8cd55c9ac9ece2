package utils

import "github.com/gofiber/fiber/v2"

// APIError describes the body returned for failed requests.
type APIError struct {
	Detail string `json:"detail"`
}

// SendJSON writes data as the bare JSON body with the given status code.
func SendJSON(c *fiber.Ctx, status int, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(data)
}

// SendOK writes data with status 200.
func SendOK(c *fiber.Ctx, data interface{}) error {
	return SendJSON(c, fiber.StatusOK, data)
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, detail string) error {
	if detail == "" {
		detail = "error"
	}

	return c.Status(status).JSON(APIError{Detail: detail})
}
