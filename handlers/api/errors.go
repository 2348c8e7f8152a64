package api

import (
	"contactdash/middleware"
	"contactdash/utils"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IsAPIRequest reports whether the request targets the JSON API under prefix
func IsAPIRequest(c *fiber.Ctx, prefix string) bool {
	if c == nil {
		return false
	}
	path := c.Path()
	if prefix != "" && (path == prefix || strings.HasPrefix(path, prefix+"/")) {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// NewErrorHandler returns the central Fiber error handler. API requests, and
// every request when renderHTML is false, get a JSON body; the rest render the
// "error" view.
func NewErrorHandler(prefix string, renderHTML bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := utils.T(middleware.Localizer(c), "error_500")

		var appErr *utils.AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			code = appErr.Code
			message = appErr.Message
			if code >= fiber.StatusInternalServerError {
				utils.Log.WithFields(appErr.Context).Error("Application error: %v", appErr)
			}
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		default:
			utils.Log.Error("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		}

		if !renderHTML || IsAPIRequest(c, prefix) {
			return c.Status(code).JSON(fiber.Map{
				"error": message,
			})
		}

		return c.Status(code).Render("error", fiber.Map{
			"Error":     message,
			"Code":      code,
			"Localizer": middleware.Localizer(c),
		})
	}
}
