package repository

import (
	"context"
	"database/sql"
	"errors"
)

// GeneralTopic represents a row of the general_topics table. Topics are a
// fixed set of site-wide discussion boards seeded at startup; users cannot
// create them.
type GeneralTopic struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ErrTopicNotFound is returned when a general topic cannot be found.
var ErrTopicNotFound = errors.New("topic not found")

type TopicRepo struct {
	db *sql.DB
}

func NewTopicRepo(db *sql.DB) *TopicRepo { return &TopicRepo{db: db} }

// defaultTopics are created on first boot. INSERT IGNORE keeps the seed
// idempotent across restarts via the unique name key.
var defaultTopics = []GeneralTopic{
	{Name: "Announcements", Description: "General updates and platform news"},
	{Name: "Hot Takes", Description: "Opinionated discussions and debates"},
	{Name: "Recommendations", Description: "Suggest books, creators, or communities"},
}

// Seed inserts the default topics if they do not exist yet.
func (r *TopicRepo) Seed(ctx context.Context) error {
	for _, t := range defaultTopics {
		if _, err := r.db.ExecContext(ctx,
			"INSERT IGNORE INTO general_topics (name, description) VALUES (?,?)",
			t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a topic by its ID, returning ErrTopicNotFound when absent.
func (r *TopicRepo) GetByID(ctx context.Context, id uint64) (*GeneralTopic, error) {
	const q = "SELECT id, name, COALESCE(description,'') FROM general_topics WHERE id = ?"
	var t GeneralTopic
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns all topics ordered by name.
func (r *TopicRepo) ListAll(ctx context.Context) ([]GeneralTopic, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, COALESCE(description,'') FROM general_topics ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GeneralTopic
	for rows.Next() {
		var t GeneralTopic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
