// Package migration applies versioned SQL scripts to the analytics SQLite
// database and records them in a schema_migrations table.
//
// Scripts are read from an fs.FS (normally an embedded directory) and must be
// named {version}_{description}.sql. Versions are applied in numeric order,
// each inside its own transaction. A script whose content changed after it was
// applied is reported as ErrChecksumMismatch instead of being re-run.
package migration
