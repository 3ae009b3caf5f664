package db

import "embed"

// Migrations holds the schema files applied by store.Migrate, in lexical order.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS
