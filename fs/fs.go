// Package appfs exposes the app's embedded assets: SQL migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
