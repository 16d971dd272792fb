// Package migrations embeds the SQL schema so the service can migrate on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
