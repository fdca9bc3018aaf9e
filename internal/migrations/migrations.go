// Package migrations embeds the goose SQL migrations for the election
// schema. The repository manager runs them at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
