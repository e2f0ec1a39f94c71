package repository

import (
	"context"
	"database/sql"
)

// FollowRepo manages the follower/followee relation. The unique pair key on
// (follower_id, followee_id) makes a duplicate follow a no-op conflict
// instead of a second row.
type FollowRepo struct {
	db *sql.DB
}

func NewFollowRepo(db *sql.DB) *FollowRepo { return &FollowRepo{db: db} }

// Create records that follower now follows followee. A duplicate follow
// maps to ErrConflict.
func (r *FollowRepo) Create(ctx context.Context, followerID, followeeID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO follows (follower_id, followee_id) VALUES (?,?)",
		followerID, followeeID)
	if isDuplicate(err, "uq_follows_pair") {
		return ErrConflict
	}
	return err
}

// Delete removes the relation if it exists. Unfollowing someone you do not
// follow is not an error, matching the forgiving unfollow semantics of the
// web flow.
func (r *FollowRepo) Delete(ctx context.Context, followerID, followeeID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id=? AND followee_id=?",
		followerID, followeeID)
	return err
}

// Exists reports whether follower currently follows followee.
func (r *FollowRepo) Exists(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM follows WHERE follower_id=? AND followee_id=? LIMIT 1",
		followerID, followeeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
