package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var errInvalidID = errors.New("invalid id")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := c.ParamsInt(name)
	if err != nil || value <= 0 {
		return 0, errInvalidID
	}
	return uint(value), nil
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func requestID(c *fiber.Ctx) string {
	value, _ := c.Locals("requestid").(string)
	return value
}

// jsonErrorHandler renders errors that escape handlers, including fiber's own
// routing and body-limit errors, in the same shape as apiError.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = strings.ToLower(fiberErr.Message)
	}
	return apiError(c, status, message)
}
