package cmd

import (
	"contactdash/client"
	"contactdash/config"
	"contactdash/dashboard"
	"contactdash/handlers/api"
	"contactdash/handlers/web"
	"contactdash/middleware"
	"contactdash/storage"
	"contactdash/utils"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// buildApp wires the API, the event stream and, when enabled, the dashboard
// pages onto one Fiber app
func buildApp(cfg *config.Config, store storage.MessageStore) (*fiber.App, error) {
	prefix := cfg.Server.APIPrefix
	renderHTML := cfg.Dashboard.Enabled

	fiberCfg := fiber.Config{
		AppName:               "contactdash",
		DisableStartupMessage: true,
		ErrorHandler:          api.NewErrorHandler(prefix, renderHTML),
	}
	if renderHTML {
		fiberCfg.Views = web.NewEngine()
		fiberCfg.ViewsLayout = "layouts/main" // Default layout
	}
	app := fiber.New(fiberCfg)

	// Add global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(logger.New())  // Request logging
	app.Use(compress.New(compress.Config{ // Response compression, except streams
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/events") || strings.HasSuffix(c.Path(), "/ws")
		},
	}))
	app.Use(helmet.New(helmet.Config{ // Security headers
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline';",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.AllowedOrigins, ","),
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.LocaleMiddleware())

	// API routes
	events := api.NewNotificationHandler()
	api.Register(app.Group(prefix), api.NewMessageHandler(store, events, cfg.API.ValidateCreate), events, api.RouteConfig{
		CreateMax:    cfg.RateLimit.CreateMax,
		CreateWindow: cfg.RateLimit.CreateWindow(),
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.Dashboard.Enabled {
		if err := mountDashboard(app, cfg, store, events); err != nil {
			return nil, err
		}
	}

	// 404 Handler for undefined routes
	app.Use(func(c *fiber.Ctx) error {
		msg := utils.T(middleware.Localizer(c), "error_404")

		if !renderHTML || api.IsAPIRequest(c, prefix) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": msg,
			})
		}
		return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
			"Error":     msg,
			"Code":      fiber.StatusNotFound,
			"Localizer": middleware.Localizer(c),
		})
	})

	return app, nil
}

// mountDashboard adds the login gate and dashboard pages. The dashboard reads
// the store in-process unless an API URL is configured; in-process mutations
// are announced on events like API ones.
func mountDashboard(app *fiber.App, cfg *config.Config, store storage.MessageStore, events *api.NotificationHandler) error {
	var backend dashboard.Backend = dashboard.NewStoreBackend(store, cfg.API.ValidateCreate).WithNotifier(events)
	if cfg.Dashboard.APIURL != "" {
		c, err := client.New(client.Config{URL: cfg.Dashboard.APIURL})
		if err != nil {
			return err
		}
		backend = c
	}

	ctrl := dashboard.NewController(backend)
	ctrl.OnNotice(func(n dashboard.Notice) {
		if n.OK() {
			utils.Log.Debug("Dashboard action %s succeeded", n.Action)
			return
		}
		utils.Log.Warn("Dashboard action %s failed: %v", n.Action, n.Err)
	})

	sessionStorage, err := storage.NewFileStorage(filepath.Join(cfg.Storage.Path, "sessions"))
	if err != nil {
		return err
	}
	sessions := session.New(session.Config{
		Storage:        sessionStorage,
		Expiration:     24 * time.Hour,
		CookieSecure:   false, // Set to true in production with HTTPS
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	gate := dashboard.NewGate(cfg.Auth)
	if !gate.Enabled() {
		utils.Log.Warn("No dashboard credentials configured; set [auth] email and password to log in")
	}

	web.Register(app, web.NewAuthHandler(sessions, gate), web.NewDashboardHandler(ctrl, sessions))
	return nil
}
