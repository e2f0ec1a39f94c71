// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Community model and repository methods for CRUD and
// lookup operations. A Community is a discussion space started by a creator
// around a particular book.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Community represents a row of the communities table. Description and
// BookTitle are optional free-text fields.
type Community struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BookTitle   string    `json:"book_title,omitempty"`
	CreatorID   uint64    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrCommunityNotFound is returned when a community cannot be found.
var ErrCommunityNotFound = errors.New("community not found")

// CommunityRepo encapsulates all database queries related to communities.
type CommunityRepo struct {
	db *sql.DB
}

// NewCommunityRepo constructs a CommunityRepo with the provided DB handle.
func NewCommunityRepo(db *sql.DB) *CommunityRepo {
	return &CommunityRepo{db: db}
}

// Create inserts a new community. On success the ID and CreatedAt fields
// are populated.
func (r *CommunityRepo) Create(ctx context.Context, c *Community) error {
	const qInsert = "INSERT INTO communities (name, description, book_title, creator_id) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.Name, nullIfEmpty(c.Description), nullIfEmpty(c.BookTitle), c.CreatorID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT created_at FROM communities WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatedAt)
}

// GetByID fetches a community by its ID. It returns ErrCommunityNotFound
// if no row is found.
func (r *CommunityRepo) GetByID(ctx context.Context, id uint64) (*Community, error) {
	const q = "SELECT id, name, COALESCE(description,''), COALESCE(book_title,''), creator_id, created_at FROM communities WHERE id = ?"
	var c Community
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description, &c.BookTitle, &c.CreatorID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns every community, newest first, for the public index.
func (r *CommunityRepo) ListAll(ctx context.Context) ([]Community, error) {
	const q = "SELECT id, name, COALESCE(description,''), COALESCE(book_title,''), creator_id, created_at FROM communities ORDER BY created_at DESC"
	return r.list(ctx, q)
}

// Search returns communities whose name or book title contains the query
// string, case-insensitively, newest first.
func (r *CommunityRepo) Search(ctx context.Context, query string) ([]Community, error) {
	const q = `SELECT id, name, COALESCE(description,''), COALESCE(book_title,''), creator_id, created_at
		FROM communities
		WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%')
		   OR LOWER(book_title) LIKE CONCAT('%', LOWER(?), '%')
		ORDER BY created_at DESC`
	return r.list(ctx, q, query, query)
}

func (r *CommunityRepo) list(ctx context.Context, query string, args ...any) ([]Community, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Community
	for rows.Next() {
		var c Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.BookTitle, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// nullIfEmpty maps "" to NULL so optional text columns stay NULL rather
// than storing empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
