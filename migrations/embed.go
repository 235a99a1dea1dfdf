// Package migrations embeds SQL migration files into the binary.
//
// The agent runs from read-only firmware images, so the schema ships
// inside the executable rather than alongside it.
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
