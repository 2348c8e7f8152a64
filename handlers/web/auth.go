package web

import (
	"contactdash/dashboard"
	"contactdash/middleware"
	"contactdash/utils"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	markerKey = "marker"
	userKey   = "user"
)

// AuthHandler serves the login screen and keeps the gate marker in the session
type AuthHandler struct {
	sessions *session.Store
	gate     *dashboard.Gate
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(sessions *session.Store, gate *dashboard.Gate) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		gate:     gate,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	if h.currentUser(c) != nil {
		return c.Redirect("/")
	}

	data := fiber.Map{
		"Localizer": middleware.Localizer(c),
		"CSRFToken": c.Locals("csrf"),
	}
	if c.Query("notice") == "logout" {
		data["Notice"] = utils.T(middleware.Localizer(c), "notice_logout_ok")
	}
	return c.Render("login", data)
}

// HandleLogin processes the login form
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	loc := middleware.Localizer(c)
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	fail := func(code int, key string) error {
		return c.Status(code).Render("login", fiber.Map{
			"Localizer": loc,
			"Error":     utils.T(loc, key),
			"Email":     email,
			"CSRFToken": c.Locals("csrf"),
		})
	}

	if email == "" || password == "" {
		return fail(fiber.StatusBadRequest, "login_required")
	}

	user, marker, err := h.gate.Login(email, password)
	if err != nil {
		utils.Log.WithField("email", email).Warn("Login failed: %v", err)
		return fail(fiber.StatusUnauthorized, "login_invalid")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return utils.InternalServerError(utils.T(loc, "error_500"), err)
	}
	if err := sess.Regenerate(); err != nil {
		return utils.InternalServerError(utils.T(loc, "error_500"), err)
	}
	sess.Set(markerKey, marker)
	if err := sess.Save(); err != nil {
		return utils.InternalServerError(utils.T(loc, "error_500"), err)
	}

	utils.Log.WithField("email", user.Email).Info("User logged in")
	return c.Redirect("/")
}

// HandleLogout drops the session
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			utils.Log.Warn("Failed to destroy session: %v", err)
		}
	}
	return c.Redirect("/login?notice=logout")
}

// RequireLogin redirects to the login page unless the session carries a
// valid marker. The resumed user is stored in Locals.
func (h *AuthHandler) RequireLogin(c *fiber.Ctx) error {
	user := h.currentUser(c)
	if user == nil {
		return c.Redirect("/login")
	}
	c.Locals(userKey, user)
	return c.Next()
}

// currentUser resumes the session marker. A marker the gate rejects is
// discarded.
func (h *AuthHandler) currentUser(c *fiber.Ctx) *dashboard.User {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return nil
	}

	marker, _ := sess.Get(markerKey).(string)
	if marker == "" {
		return nil
	}

	user, err := h.gate.Resume(marker)
	if err != nil {
		utils.Log.Debug("Discarding session marker: %v", err)
		sess.Delete(markerKey)
		sess.Save()
		return nil
	}
	return user
}
