package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		Version:     1,
		Description: "Add field/value index for reverse lookups",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_documents_field_value ON documents(field, value);
`,
	},
	{
		Version:     2,
		Description: "Add updated_at column to documents",
		SQL: `
ALTER TABLE documents ADD COLUMN updated_at TIMESTAMP;
UPDATE documents SET updated_at = created_at WHERE updated_at IS NULL;
`,
	},
}

// RunMigrations applies pending migrations in order
func RunMigrations(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
		if err != nil {
			return fmt.Errorf("failed to create migrations table: %w", err)
		}

		var currentVersion int
		err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
		if err != nil {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		for _, migration := range migrations {
			if migration.Version <= currentVersion {
				continue
			}

			// A database restored from a newer dump may already carry the column
			if migration.Version == 2 {
				exists, err := columnExists(db, "documents", "updated_at")
				if err != nil {
					return fmt.Errorf("failed to check column existence: %w", err)
				}
				if exists {
					_, err = db.Exec(
						"INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (?, ?)",
						migration.Version,
						migration.Description,
					)
					if err != nil {
						return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
					}
					continue
				}
			}

			tx, err := db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
			}

			if _, err = tx.Exec(migration.SQL); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Description, err)
			}

			_, err = tx.Exec(
				"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
				migration.Version,
				migration.Description,
			)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}

			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
			}
		}

		return nil
	})
}

func columnExists(db *sql.DB, tableName, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cid int
		var name string
		var typ string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
