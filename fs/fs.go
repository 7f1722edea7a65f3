package appfs

import "embed"

// FS holds the SQL migrations, email templates and assets shipped with the binaries.
//
//go:embed assets migrations all:templates
var FS embed.FS
