// Package migrations holds the versioned SQL schema for the point-of-sale
// tables. The files are embedded so the server and integration tests apply
// the same schema as the migrate CLI.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
