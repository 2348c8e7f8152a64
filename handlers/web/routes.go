package web

import (
	"contactdash/middleware"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the dashboard pages on app. Every form is CSRF protected;
// every page but the login screen requires a session marker.
func Register(app fiber.Router, auth *AuthHandler, dash *DashboardHandler) {
	csrf := middleware.CSRFProtection()

	// Public routes
	app.Get("/login", csrf, auth.ShowLogin)
	app.Post("/login", csrf, auth.HandleLogin)
	app.Get("/logout", auth.HandleLogout)

	// Protected routes
	app.Get("/", csrf, auth.RequireLogin, dash.Show)
	app.Get("/contact", auth.RequireLogin, dash.HandleContact)
	app.Post("/action/:action/:id", csrf, auth.RequireLogin, dash.HandleAction)
	app.Post("/empty-trash", csrf, auth.RequireLogin, dash.HandleEmptyTrash)
	app.Post("/refresh", csrf, auth.RequireLogin, dash.HandleRefresh)
}
