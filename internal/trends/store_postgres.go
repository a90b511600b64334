package trends

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
)

// PostgresHistoryStore persists topic history in PostgreSQL.
// This store is pure I/O; similarity and cooldown decisions belong in the
// service.
type PostgresHistoryStore struct {
	db *sql.DB
}

// NewPostgresHistoryStore constructs a PostgreSQL-backed history store.
func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Record(ctx context.Context, topic Topic) error {
	if topic.ID.IsZero() {
		return fmt.Errorf("topic id is required")
	}
	query := `
		INSERT INTO topic_history (id, title, summary, source, source_url, score, keywords, selected_for, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(topic.ID), topic.Title, topic.Summary, topic.Source,
		topic.SourceURL, topic.Score, pq.Array(topic.Keywords),
		topic.SelectedFor, topic.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("record topic: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) ListSince(ctx context.Context, cutoff time.Time) ([]Topic, error) {
	query := `
		SELECT id, title, summary, source, source_url, score, keywords, selected_for, fetched_at
		FROM topic_history
		WHERE fetched_at >= $1
		ORDER BY fetched_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list topics since: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func (s *PostgresHistoryStore) Recent(ctx context.Context, limit int) ([]Topic, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, title, summary, source, source_url, score, keywords, selected_for, fetched_at
		FROM topic_history
		ORDER BY fetched_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent topics: %w", err)
	}
	defer rows.Close()
	return scanTopics(rows)
}

func scanTopics(rows *sql.Rows) ([]Topic, error) {
	var out []Topic
	for rows.Next() {
		var (
			topic    Topic
			topicID  uuid.UUID
			keywords pq.StringArray
		)
		err := rows.Scan(&topicID, &topic.Title, &topic.Summary, &topic.Source,
			&topic.SourceURL, &topic.Score, &keywords, &topic.SelectedFor, &topic.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topic.ID = domain.TopicID(topicID)
		topic.Keywords = keywords
		out = append(out, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return out, nil
}

// PostgresBlocklistStore persists blocked phrases in PostgreSQL.
type PostgresBlocklistStore struct {
	db *sql.DB
}

// NewPostgresBlocklistStore constructs a PostgreSQL-backed blocklist store.
func NewPostgresBlocklistStore(db *sql.DB) *PostgresBlocklistStore {
	return &PostgresBlocklistStore{db: db}
}

func (s *PostgresBlocklistStore) Add(ctx context.Context, phrase string) error {
	phrase = normalizePhrase(phrase)
	if phrase == "" {
		return fmt.Errorf("phrase cannot be empty")
	}
	query := `
		INSERT INTO topic_blocklist (phrase, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (phrase) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, phrase); err != nil {
		return fmt.Errorf("add blocklist phrase: %w", err)
	}
	return nil
}

func (s *PostgresBlocklistStore) Remove(ctx context.Context, phrase string) error {
	phrase = normalizePhrase(phrase)
	res, err := s.db.ExecContext(ctx, `DELETE FROM topic_blocklist WHERE phrase = $1`, phrase)
	if err != nil {
		return fmt.Errorf("remove blocklist phrase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove blocklist phrase: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("blocklist phrase %q: %w", phrase, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresBlocklistStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phrase FROM topic_blocklist ORDER BY phrase`)
	if err != nil {
		return nil, fmt.Errorf("list blocklist: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var phrase string
		if err := rows.Scan(&phrase); err != nil {
			return nil, fmt.Errorf("scan blocklist phrase: %w", err)
		}
		out = append(out, phrase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocklist: %w", err)
	}
	return out, nil
}
