package appfs

import "embed"

// FS holds the SQL migrations, see storage/database.Migrate.
//
//go:embed migrations/*.sql
var FS embed.FS
