package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditpulse/evalengine/internal/models"
)

type RepositoryConfig struct {
	ConnString   string
	RunsTable    string
	MetricsTable string
}

// Repository fronts the external runs table and the metrics table. The runs
// table is owned by the report-generation pipeline; this side only reads
// pending rows and flips evaluation_status once metrics are durably written.
type Repository struct {
	config RepositoryConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config RepositoryConfig) (*Repository, error) {
	if config.RunsTable == "" {
		config.RunsTable = "runs"
	}
	if config.MetricsTable == "" {
		config.MetricsTable = "metrics"
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	r := &Repository{
		config: config,
		pool:   pool,
	}

	if err := r.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *Repository) initialize() error {
	// Only the metrics table belongs to this subsystem; the runs table is
	// created by the pipeline that populates it.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			file_name TEXT NOT NULL,
			run_id TEXT NOT NULL,
			prompt_path TEXT,
			scores JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, r.config.MetricsTable)

	_, err := r.pool.Exec(context.Background(), createTable)
	if err != nil {
		return fmt.Errorf("failed to create metrics table: %v", err)
	}
	return nil
}

// FindPending returns every run awaiting evaluation that has a generated
// report to score. An empty result is the normal steady state.
func (r *Repository) FindPending(ctx context.Context) ([]models.EvaluationTask, error) {
	query := fmt.Sprintf(`
		SELECT run_id, audit_report_path, COALESCE(prompt_path, '')
		FROM %s
		WHERE evaluation_status = 0
		  AND audit_report_path IS NOT NULL
		  AND audit_report_path <> ''`,
		r.config.RunsTable)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending evaluations: %v", err)
	}
	defer rows.Close()

	var pending []models.EvaluationTask
	for rows.Next() {
		var task models.EvaluationTask
		if err := rows.Scan(&task.RunID, &task.ReportPath, &task.PromptPath); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %v", err)
		}
		pending = append(pending, task)
	}

	return pending, rows.Err()
}

// InsertMetrics writes one scores row for an evaluated report. Failed
// encoders arrive as NaN and land as JSON null in the scores column.
func (r *Repository) InsertMetrics(ctx context.Context, row models.MetricsRow) error {
	scores, err := json.Marshal(row.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %v", err)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (file_name, run_id, prompt_path, scores)
		VALUES ($1, $2, $3, $4)`,
		r.config.MetricsTable)

	_, err = r.pool.Exec(ctx, stmt, row.FileName, row.RunID, row.PromptPath, scores)
	if err != nil {
		return fmt.Errorf("failed to insert metrics row: %v", err)
	}
	return nil
}

// MarkEvaluated flips the run's evaluation flag. Callers must only do this
// after InsertMetrics has succeeded.
func (r *Repository) MarkEvaluated(ctx context.Context, runID string) error {
	stmt := fmt.Sprintf(
		"UPDATE %s SET evaluation_status = 1 WHERE run_id = $1",
		r.config.RunsTable)

	_, err := r.pool.Exec(ctx, stmt, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %s evaluated: %v", runID, err)
	}
	return nil
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
