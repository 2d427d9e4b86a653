package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, unreadable_input, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errUnreadable returns a 422 for files the SEGY scan could not make sense of.
func errUnreadable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "unreadable_input", msg)
}

// errTooLarge returns a 413 error.
func errTooLarge(c *fiber.Ctx, msg string) error {
	return newError(c, 413, "payload_too_large", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// ErrorHandler maps errors that escape the handlers (fiber's routing and
// body-limit errors included) into the APIError envelope. Wire it as
// fiber.Config.ErrorHandler so oversized uploads get the same JSON shape as
// handler-level failures.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusRequestEntityTooLarge:
			return errTooLarge(c, "request body exceeds the configured upload limit")
		case fiber.StatusNotFound:
			return errNotFound(c, fe.Message)
		default:
			return newError(c, fe.Code, "request_failed", fe.Message)
		}
	}
	return errInternal(c, err.Error())
}
