package middleware

import (
	"contactdash/locales"
	"contactdash/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// LocaleMiddleware detects and sets the caller's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// query parameter, then cookie, then Accept-Language
		lang := c.Query("lang")
		if lang == "" {
			lang = c.Cookies("lang")
		}
		if lang == "" {
			lang = fromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}

		if !utils.SupportedLanguage(lang) {
			lang = "en"
		}

		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		utils.Log.Debug("Locale detected: %s for path: %s", lang, c.Path())

		return c.Next()
	}
}

var (
	supportedTags = func() []language.Tag {
		tags := make([]language.Tag, len(locales.Supported))
		for i, lang := range locales.Supported {
			tags[i] = language.Make(lang)
		}
		return tags
	}()
	localeMatcher = language.NewMatcher(supportedTags)
)

// fromAcceptLanguage picks the caller's most preferred supported language
func fromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	// tags come sorted by weight; take the first one we can serve
	for _, tag := range tags {
		if _, index, confidence := localeMatcher.Match(tag); confidence != language.No {
			return locales.Supported[index]
		}
	}
	return ""
}

// Localizer returns the request localizer, defaulting to English when the
// locale middleware did not run
func Localizer(c *fiber.Ctx) *i18n.Localizer {
	return localizer(c)
}

func localizer(c *fiber.Ctx) *i18n.Localizer {
	if l, ok := c.Locals("localizer").(*i18n.Localizer); ok && l != nil {
		return l
	}
	return utils.GetLocalizer("en")
}
