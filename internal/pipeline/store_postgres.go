package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mindcast/pkg/domain"
	"mindcast/pkg/platform/sentinel"
)

// PostgresStore persists runs in PostgreSQL. Stage records and stage
// outputs are stored as JSONB; queries only filter on the scalar columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed run store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, run *Run) error {
	cols, err := marshalRun(run)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO pipeline_runs (id, run_date, status, stages, topic, script, artifact, post, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(run.ID), run.Date, run.Status,
		cols.stages, cols.topic, cols.script, cols.artifact, cols.post,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s already exists: %w", run.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, run *Run) error {
	cols, err := marshalRun(run)
	if err != nil {
		return err
	}
	query := `
		UPDATE pipeline_runs
		SET status = $2, stages = $3, topic = $4, script = $5, artifact = $6, post = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(run.ID), run.Status,
		cols.stages, cols.topic, cols.script, cols.artifact, cols.post,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", run.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.RunID) (*Run, error) {
	query := `
		SELECT id, run_date, status, stages, topic, script, artifact, post, created_at, updated_at
		FROM pipeline_runs
		WHERE id = $1
	`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, sentinel.ErrNotFound)
	}
	return run, err
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, run_date, status, stages, topic, script, artifact, post, created_at, updated_at
		FROM pipeline_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SucceededForDate(ctx context.Context, date string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pipeline_runs WHERE run_date = $1 AND status = $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, date, domain.StatusSucceeded).Scan(&exists); err != nil {
		return false, fmt.Errorf("check succeeded run: %w", err)
	}
	return exists, nil
}

type runColumns struct {
	stages   []byte
	topic    []byte
	script   []byte
	artifact []byte
	post     []byte
}

func marshalRun(run *Run) (*runColumns, error) {
	cols := &runColumns{}
	var err error
	if cols.stages, err = json.Marshal(run.Stages); err != nil {
		return nil, fmt.Errorf("marshal stages: %w", err)
	}
	if cols.topic, err = marshalOptional(run.Topic); err != nil {
		return nil, fmt.Errorf("marshal topic: %w", err)
	}
	if cols.script, err = marshalOptional(run.Script); err != nil {
		return nil, fmt.Errorf("marshal script: %w", err)
	}
	if cols.artifact, err = marshalOptional(run.Artifact); err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	if cols.post, err = marshalOptional(run.Post); err != nil {
		return nil, fmt.Errorf("marshal post: %w", err)
	}
	return cols, nil
}

func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		id        uuid.UUID
		stages    []byte
		topic     []byte
		scriptRaw []byte
		artifact  []byte
		post      []byte
	)
	err := row.Scan(&id, &run.Date, &run.Status,
		&stages, &topic, &scriptRaw, &artifact, &post,
		&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.ID = domain.RunID(id)

	if err := json.Unmarshal(stages, &run.Stages); err != nil {
		return nil, fmt.Errorf("unmarshal stages: %w", err)
	}
	if err := unmarshalOptional(topic, &run.Topic); err != nil {
		return nil, fmt.Errorf("unmarshal topic: %w", err)
	}
	if err := unmarshalOptional(scriptRaw, &run.Script); err != nil {
		return nil, fmt.Errorf("unmarshal script: %w", err)
	}
	if err := unmarshalOptional(artifact, &run.Artifact); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	if err := unmarshalOptional(post, &run.Post); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}
	return &run, nil
}

func unmarshalOptional[T any](raw []byte, dst **T) error {
	if len(raw) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}

var _ Store = (*PostgresStore)(nil)
