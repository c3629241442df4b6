// Package mapty embeds the browser page served by cmd/mapty.
package mapty

import "embed"

// WebFS holds the static page, its script and stylesheet.
//
//go:embed web
var WebFS embed.FS
