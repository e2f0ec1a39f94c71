package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Post represents a row of the posts table. Exactly one of CommunityID,
// GeneralTopicID and ProfileOwnerID is set; it decides where the post is
// displayed. AuthorName is joined in for list responses.
type Post struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       uint64    `json:"author_id"`
	AuthorName     string    `json:"author_name,omitempty"`
	CommunityID    *uint64   `json:"community_id,omitempty"`
	GeneralTopicID *uint64   `json:"general_topic_id,omitempty"`
	ProfileOwnerID *uint64   `json:"profile_owner_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrPostNotFound is returned when a post cannot be found.
var ErrPostNotFound = errors.New("post not found")

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = `p.id, p.title, p.content, p.author_id, u.username,
	p.community_id, p.general_topic_id, p.profile_owner_id, p.created_at`

// Create inserts a post and populates its ID and CreatedAt. The caller is
// responsible for having validated that exactly one destination is set.
func (r *PostRepo) Create(ctx context.Context, p *Post) error {
	const q = "INSERT INTO posts (title, content, author_id, community_id, general_topic_id, profile_owner_id) VALUES (?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q, p.Title, p.Content, p.AuthorID, p.CommunityID, p.GeneralTopicID, p.ProfileOwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM posts WHERE id=?", p.ID).Scan(&p.CreatedAt)
}

// GetByID fetches a post by its ID, returning ErrPostNotFound when absent.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*Post, error) {
	q := "SELECT " + postColumns + " FROM posts p JOIN users u ON u.id=p.author_id WHERE p.id = ?"
	row := r.db.QueryRowContext(ctx, q, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a post. It returns ErrPostNotFound when no row matched.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ListByCommunity returns a community's posts, newest first.
func (r *PostRepo) ListByCommunity(ctx context.Context, communityID uint64) ([]Post, error) {
	q := "SELECT " + postColumns + " FROM posts p JOIN users u ON u.id=p.author_id WHERE p.community_id=? ORDER BY p.created_at DESC"
	return r.list(ctx, q, communityID)
}

// ListByTopic returns a general topic's posts, newest first.
func (r *PostRepo) ListByTopic(ctx context.Context, topicID uint64) ([]Post, error) {
	q := "SELECT " + postColumns + " FROM posts p JOIN users u ON u.id=p.author_id WHERE p.general_topic_id=? ORDER BY p.created_at DESC"
	return r.list(ctx, q, topicID)
}

// ListByProfile returns the posts published on a user's profile page,
// newest first.
func (r *PostRepo) ListByProfile(ctx context.Context, ownerID uint64) ([]Post, error) {
	q := "SELECT " + postColumns + " FROM posts p JOIN users u ON u.id=p.author_id WHERE p.profile_owner_id=? ORDER BY p.created_at DESC"
	return r.list(ctx, q, ownerID)
}

// ListFeed returns profile posts authored by the creators the given user
// follows, newest first. The join on follows replaces loading the follow
// list into memory first.
func (r *PostRepo) ListFeed(ctx context.Context, followerID uint64) ([]Post, error) {
	q := "SELECT " + postColumns + ` FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN follows f ON f.followee_id = p.profile_owner_id
		WHERE f.follower_id = ? AND p.profile_owner_id IS NOT NULL
		ORDER BY p.created_at DESC`
	return r.list(ctx, q, followerID)
}

func (r *PostRepo) list(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		p            Post
		community    sql.NullInt64
		topic        sql.NullInt64
		profileOwner sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName,
		&community, &topic, &profileOwner, &p.CreatedAt); err != nil {
		return nil, err
	}
	if community.Valid {
		v := uint64(community.Int64)
		p.CommunityID = &v
	}
	if topic.Valid {
		v := uint64(topic.Int64)
		p.GeneralTopicID = &v
	}
	if profileOwner.Valid {
		v := uint64(profileOwner.Int64)
		p.ProfileOwnerID = &v
	}
	return &p, nil
}
