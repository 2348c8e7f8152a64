package api

import (
	"contactdash/middleware"
	"contactdash/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RouteConfig carries the knobs of the message API routes
type RouteConfig struct {
	CreateMax    int
	CreateWindow time.Duration
}

// Register mounts the message API on router. The soft delete (PATCH /delete)
// and permanent delete (DELETE /delete) share a path and differ by method.
func Register(router fiber.Router, h *MessageHandler, events *NotificationHandler, cfg RouteConfig) {
	router.Post("/new", middleware.RateLimiter(cfg.CreateMax, cfg.CreateWindow), h.Create)
	router.Get("/all", h.All)
	router.Delete("/delete", h.Delete)

	router.Patch("/read", h.SetFlag(models.FlagRead, true))
	router.Patch("/archive", h.SetFlag(models.FlagArchived, true))
	router.Patch("/unarchive", h.SetFlag(models.FlagArchived, false))
	router.Patch("/star", h.SetFlag(models.FlagStarred, true))
	router.Patch("/unstar", h.SetFlag(models.FlagStarred, false))
	router.Patch("/delete", h.SetFlag(models.FlagDeleted, true))
	router.Patch("/restore", h.SetFlag(models.FlagDeleted, false))

	i18nHandler := &I18nHandler{}
	router.Get("/i18n/:lang", i18nHandler.GetTranslations)

	if events != nil {
		router.Get("/events", events.HandleSSE)
		router.Get("/ws", UpgradeWebSocket, websocket.New(events.HandleWebSocket))
	}
}
