package food

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
)

// Repository is a database-backed repository for food entries.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts a food entry.
func (r *Repository) Save(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal food entry to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO food_entries (id, user_id, entry_date, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, string(data), e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save food entry %s: %w", e.ID, err)
	}
	return nil
}

// List returns a user's entries, newest first. An empty date matches every
// date; limit <= 0 returns all matches.
func (r *Repository) List(ctx context.Context, userID, date string, limit int) ([]Entry, error) {
	query := `SELECT id, data FROM food_entries WHERE user_id = ?`
	args := []any{userID}
	if date != "" {
		query += ` AND entry_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list food entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan food entry row: %w", err)
		}
		var e Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			log.Printf("Warning: failed to unmarshal food entry JSON for ID %s: %v", id, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
