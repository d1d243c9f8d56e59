package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Document is a materialized bot document: field name to ordered values
type Document map[string][]json.RawMessage

// Has reports whether the field holds at least one value
func (d Document) Has(field string) bool {
	return len(d[field]) > 0
}

// Int64s decodes every value of field as an integer. Values that are not
// integers are skipped.
func (d Document) Int64s(field string) []int64 {
	values := d[field]
	out := make([]int64, 0, len(values))
	for _, raw := range values {
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FirstString returns the first value of field as a string
func (d Document) FirstString(field string) (string, bool) {
	values := d[field]
	if len(values) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(values[0], &s); err != nil {
		return "", false
	}
	return s, true
}

// FirstBool returns the first value of field as a bool
func (d Document) FirstBool(field string) (bool, bool) {
	values := d[field]
	if len(values) == 0 {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(values[0], &b); err != nil {
		return false, false
	}
	return b, true
}

// First decodes the first value of field into dst
func (d Document) First(field string, dst interface{}) (bool, error) {
	values := d[field]
	if len(values) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(values[0], dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", field, err)
	}
	return true, nil
}

// DocumentStore keeps set-like fields of keyed documents in SQLite
type DocumentStore struct {
	queue *DBQueue
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(queue *DBQueue) *DocumentStore {
	return &DocumentStore{queue: queue}
}

// DocID formats a numeric document key
func DocID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func encodeValue(value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// AddValue appends value to field unless it is already present.
// It reports whether a row was inserted.
func (s *DocumentStore) AddValue(ctx context.Context, docID, field string, value interface{}) (bool, error) {
	encoded, err := encodeValue(value)
	if err != nil {
		return false, err
	}

	var inserted bool
	err = s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		now := time.Now()
		result, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO documents (doc_id, field, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			docID, field, encoded, now, now,
		)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// SetValue replaces every value of field with the single value given
func (s *DocumentStore) SetValue(ctx context.Context, docID, field string, value interface{}) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}

	return s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ? AND field = ?`, docID, field); err != nil {
			return err
		}
		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (doc_id, field, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			docID, field, encoded, now, now,
		); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// DelValue removes value from field and reports whether it was present
func (s *DocumentStore) DelValue(ctx context.Context, docID, field string, value interface{}) (bool, error) {
	encoded, err := encodeValue(value)
	if err != nil {
		return false, err
	}

	var deleted bool
	err = s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		result, err := db.ExecContext(ctx,
			`DELETE FROM documents WHERE doc_id = ? AND field = ? AND value = ?`,
			docID, field, encoded,
		)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// ClearField removes every value of field
func (s *DocumentStore) ClearField(ctx context.Context, docID, field string) error {
	return s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ? AND field = ?`, docID, field)
		return err
	})
}

// GetDoc returns the whole document, or nil when it has no values
func (s *DocumentStore) GetDoc(ctx context.Context, docID string) (Document, error) {
	var doc Document
	err := s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT field, value FROM documents WHERE doc_id = ? ORDER BY id`,
			docID,
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var field, value string
			if err := rows.Scan(&field, &value); err != nil {
				return err
			}
			if doc == nil {
				doc = make(Document)
			}
			doc[field] = append(doc[field], json.RawMessage(value))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return doc, nil
}

// Values returns the ordered values of a single field
func (s *DocumentStore) Values(ctx context.Context, docID, field string) ([]json.RawMessage, error) {
	var values []json.RawMessage
	err := s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx,
			`SELECT value FROM documents WHERE doc_id = ? AND field = ? ORDER BY id`,
			docID, field,
		)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var value string
			if err := rows.Scan(&value); err != nil {
				return err
			}
			values = append(values, json.RawMessage(value))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", docID, field, err)
	}
	return values, nil
}

// CountValues counts the values of a field
func (s *DocumentStore) CountValues(ctx context.Context, docID, field string) (int, error) {
	var count int
	err := s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE doc_id = ? AND field = ?`,
			docID, field,
		).Scan(&count)
	})
	return count, err
}
