package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/teamboard/schedule-engine/internal/core/domain"
)

var _ domain.ScheduleRepository = (*PostgresScheduleRepository)(nil)

// Schema is the table layout this repository expects.
const Schema = `
CREATE TABLE IF NOT EXISTS schedules (
	id              TEXT PRIMARY KEY,
	team_id         TEXT NOT NULL,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL,
	start_time      TIMESTAMPTZ NOT NULL,
	end_time        TIMESTAMPTZ NOT NULL,
	completed_tasks INTEGER NOT NULL DEFAULT 0,
	total_tasks     INTEGER NOT NULL DEFAULT 0,
	version         INTEGER NOT NULL DEFAULT 1,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	deleted_at      TIMESTAMPTZ,
	CHECK (end_time >= start_time),
	CHECK (completed_tasks >= 0 AND completed_tasks <= total_tasks)
);
CREATE INDEX IF NOT EXISTS schedules_team_range_idx ON schedules (team_id, start_time, end_time);
CREATE INDEX IF NOT EXISTS schedules_team_updated_idx ON schedules (team_id, updated_at);
`

type PostgresScheduleRepository struct {
	db *sqlx.DB
}

func NewPostgresScheduleRepository(db *sqlx.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

// Migrate creates the schedules table when missing.
func (r *PostgresScheduleRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *PostgresScheduleRepository) Create(ctx context.Context, s *domain.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Version == 0 {
		s.Version = 1
	}

	query := `
		INSERT INTO schedules (
			id, team_id, title, description, color,
			start_time, end_time, completed_tasks, total_tasks,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :team_id, :title, :description, :color,
			:start_time, :end_time, :completed_tasks, :total_tasks,
			:version, :created_at, :updated_at, :deleted_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrScheduleConflict
		}
		return err
	}
	return nil
}

func (r *PostgresScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	var s domain.Schedule
	query := `SELECT * FROM schedules WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresScheduleRepository) ListByRange(ctx context.Context, teamID string, from, to time.Time) ([]*domain.Schedule, error) {
	schedules := []*domain.Schedule{}

	query := `
		SELECT * FROM schedules
		WHERE team_id = $1
		  AND start_time <= $3
		  AND end_time >= $2
		  AND deleted_at IS NULL
		ORDER BY start_time ASC, id ASC`

	if err := r.db.SelectContext(ctx, &schedules, query, teamID, from, to); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *PostgresScheduleRepository) Update(ctx context.Context, s *domain.Schedule) error {
	s.Version++
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE schedules
		SET title = :title,
		    description = :description,
		    color = :color,
		    start_time = :start_time,
		    end_time = :end_time,
		    completed_tasks = :completed_tasks,
		    total_tasks = :total_tasks,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1  -- Optimistic Lock check
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		s.Version--
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		s.Version--
		exists, _ := r.exists(ctx, s.ID)
		if !exists {
			return domain.ErrScheduleNotFound
		}
		return domain.ErrScheduleConflict
	}

	return nil
}

func (r *PostgresScheduleRepository) Delete(ctx context.Context, id string, teamID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE schedules
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND team_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, teamID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrScheduleNotFound
	}

	return nil
}

func (r *PostgresScheduleRepository) GetChanges(ctx context.Context, teamID string, since time.Time) ([]*domain.Schedule, error) {
	schedules := []*domain.Schedule{}

	query := `
		SELECT * FROM schedules
		WHERE team_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &schedules, query, teamID, since); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *PostgresScheduleRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM schedules WHERE id = $1 AND deleted_at IS NULL", id)
	return count > 0, err
}

// isUniqueViolation understands both the lib/pq and the pgx error shapes.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var coded interface{ SQLState() string }
	if errors.As(err, &coded) {
		return coded.SQLState() == "23505"
	}
	return false
}
