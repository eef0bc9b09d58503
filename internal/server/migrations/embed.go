// Package migrations embeds the SQL schema migrations into the binary so
// the server can migrate on startup without files on disk.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
