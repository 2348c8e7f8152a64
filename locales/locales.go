// Package locales embeds the translation bundles used by the dashboard.
package locales

import "embed"

// FS holds the active.<lang>.toml message files.
//
//go:embed *.toml
var FS embed.FS

// Supported lists the languages that have a message file.
var Supported = []string{"en", "fr"}
