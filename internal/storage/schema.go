package storage

import "database/sql"

// Every document is a bag of set-like fields. A row is one value of one
// field; the autoincrement id preserves insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_id TEXT NOT NULL,
    field TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(doc_id, field, value)
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_field ON documents(doc_id, field);
`

// InitSchema initializes the database schema
func InitSchema(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}
