package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope for successful JSON responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for error JSON responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Success writes a successful JSON response.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// Error writes a JSON error response.
func Error(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized writes a 401 response.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}
