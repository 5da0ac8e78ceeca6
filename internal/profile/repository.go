package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

// Repository is a database-backed repository for profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or replaces a profile document.
func (r *Repository) Save(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, data, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		p.ID, string(data), p.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a profile by its ID. A missing profile yields (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Profile, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	return &p, nil
}

// List returns up to limit profiles in creation order.
func (r *Repository) List(ctx context.Context, limit int) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM profiles ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var p Profile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			log.Printf("Warning: failed to unmarshal profile JSON for ID %s: %v", id, err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
