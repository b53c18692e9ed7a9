// Package migration applies versioned schema changes to SQLite databases.
//
// Migrations are read from an fs.FS (normally an embed.FS compiled into the
// binary) and must be named {version}_{description}.sql, for example
// "001_initial_schema.sql". Each file runs inside its own transaction and is
// recorded in the schema_migrations table so it is applied exactly once.
//
// Example usage:
//
//	manager := NewManager(NewFileScanner(), NewSQLiteExecutor(db), migrations, ".", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
