package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sentiment-service/internal/core/domain"
	output "sentiment-service/internal/core/ports/output"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS comparison_run (
		id         UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		dataset    TEXT NOT NULL,
		samples    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_result (
		run_id     UUID NOT NULL REFERENCES comparison_run(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		model_name TEXT NOT NULL,
		status     TEXT NOT NULL,
		accuracy   DOUBLE PRECISION NOT NULL,
		report     TEXT NOT NULL DEFAULT '',
		error      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS comparison_run_created_at_idx ON comparison_run (created_at DESC)`,
}

type comparisonRepo struct {
	pool *pgxpool.Pool
}

// NewComparisonRepository creates a new ComparisonRepository
func NewComparisonRepository(pool *pgxpool.Pool) output.ComparisonRepository {
	return &comparisonRepo{pool: pool}
}

// EnsureSchema creates the comparison tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *comparisonRepo) Create(ctx context.Context, run *domain.ComparisonRun) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin comparison tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO comparison_run (id, created_at, dataset, samples)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.CreatedAt, run.Dataset, run.Samples)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("comparison run %s already recorded", run.ID)
		}
		return fmt.Errorf("create comparison run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, res := range run.Results {
		batch.Queue(`
			INSERT INTO comparison_result (run_id, position, model_name, status, accuracy, report, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, run.ID, i, res.ModelName, string(res.Status), res.Accuracy, res.Report, res.Error)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create comparison results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit comparison run: %w", err)
	}
	return nil
}

func (r *comparisonRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ComparisonRun, error) {
	run := &domain.ComparisonRun{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, created_at, dataset, samples
		FROM comparison_run
		WHERE id = $1
	`, id).Scan(&run.ID, &run.CreatedAt, &run.Dataset, &run.Samples)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrComparisonNotFound
		}
		return nil, fmt.Errorf("get comparison run by id: %w", err)
	}

	if err := r.attachResults(ctx, []*domain.ComparisonRun{run}); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *comparisonRepo) List(ctx context.Context, filter output.ComparisonListFilter) ([]*domain.ComparisonRun, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comparison_run`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comparison runs: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, dataset, samples
		FROM comparison_run
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comparison runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.ComparisonRun{}
	for rows.Next() {
		run := &domain.ComparisonRun{}
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Dataset, &run.Samples); err != nil {
			return nil, 0, fmt.Errorf("scan comparison run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comparison runs: %w", err)
	}
	rows.Close()

	if err := r.attachResults(ctx, runs); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (r *comparisonRepo) attachResults(ctx context.Context, runs []*domain.ComparisonRun) error {
	if len(runs) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.ComparisonRun, len(runs))
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		run.Results = []domain.ComparisonResult{}
		byID[run.ID] = run
		ids = append(ids, run.ID.String())
	}

	rows, err := r.pool.Query(ctx, `
		SELECT run_id, model_name, status, accuracy, report, error
		FROM comparison_result
		WHERE run_id = ANY($1::uuid[])
		ORDER BY run_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("list comparison results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			runID  uuid.UUID
			status string
			res    domain.ComparisonResult
		)
		if err := rows.Scan(&runID, &res.ModelName, &status, &res.Accuracy, &res.Report, &res.Error); err != nil {
			return fmt.Errorf("scan comparison result: %w", err)
		}
		res.Status = domain.ResultStatus(status)
		if run, ok := byID[runID]; ok {
			run.Results = append(run.Results, res)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate comparison results: %w", err)
	}
	return nil
}
