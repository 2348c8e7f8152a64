package api

import (
	"contactdash/utils"

	"github.com/gofiber/fiber/v2"
)

// noticeKeys are the strings dashboard clients show after an action
var noticeKeys = []string{
	"notice_read_ok", "notice_read_failed",
	"notice_star_ok", "notice_star_failed",
	"notice_unstar_ok", "notice_unstar_failed",
	"notice_archive_ok", "notice_archive_failed",
	"notice_unarchive_ok", "notice_unarchive_failed",
	"notice_delete_ok", "notice_delete_failed",
	"notice_restore_ok", "notice_restore_failed",
	"notice_permanentDelete_ok", "notice_permanentDelete_failed",
	"notice_deleteAll_ok", "notice_deleteAll_failed",
	"notice_refresh_ok", "notice_refresh_failed",
	"notice_create_ok", "notice_create_failed",
	"error_rate_limited", "error_not_found", "error_500",
}

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns notice translations for dashboard clients
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")
	if !utils.SupportedLanguage(lang) {
		lang = "en"
	}

	localizer := utils.GetLocalizer(lang)

	translations := make(map[string]string, len(noticeKeys))
	for _, key := range noticeKeys {
		translations[key] = utils.T(localizer, key)
	}

	return c.JSON(translations)
}
