package web

import (
	"contactdash/models"
	"contactdash/utils"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed templates
var templateFS embed.FS

// previewLength is the excerpt size shown in the message list
const previewLength = 160

// NewEngine builds the view engine over the embedded templates
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")

	// i18n template functions; the localizer comes from the request
	engine.AddFunc("t", func(l *i18n.Localizer, messageID string) string {
		return utils.T(l, messageID)
	})
	engine.AddFunc("tPlural", func(l *i18n.Localizer, messageID string, count int) string {
		return utils.TPlural(l, messageID, count)
	})

	engine.AddFunc("formatDate", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 02, 2006 15:04")
	})
	engine.AddFunc("priorityKey", func(p models.Priority) string {
		return "priority_" + string(p)
	})

	return engine
}
