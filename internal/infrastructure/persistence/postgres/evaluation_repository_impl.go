package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/entity"
)

// PostgresEvaluationRepository реализует repository.EvaluationRepository для PostgreSQL
type PostgresEvaluationRepository struct {
	db *sql.DB
}

// NewPostgresEvaluationRepository создает новый PostgreSQL repository
func NewPostgresEvaluationRepository(db *sql.DB) *PostgresEvaluationRepository {
	return &PostgresEvaluationRepository{
		db: db,
	}
}

// Save сохраняет run и его записи одной транзакцией
func (r *PostgresEvaluationRepository) Save(ctx context.Context, result *entity.EvaluationResult) error {
	run, err := ToRunModel(result)
	if err != nil {
		return fmt.Errorf("failed to convert to DB model: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO evaluation_runs (id, generated_at, overall, issue_count, warning_count, alerts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		run.ID,
		run.GeneratedAt,
		run.Overall,
		run.IssueCount,
		run.Warnings,
		nullableJSON(run.Alerts),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluation_entries (run_id, target_name, target_kind, check_name, category, unit, value, taken_at, verdict)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, model := range ToEntryModels(result) {
		_, err = stmt.ExecContext(ctx,
			model.RunID,
			model.TargetName,
			model.TargetKind,
			model.CheckName,
			model.Category,
			model.Unit,
			model.Value,
			model.TakenAt,
			model.Verdict,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindLatest возвращает последний сохраненный run (nil если run'ов нет)
func (r *PostgresEvaluationRepository) FindLatest(ctx context.Context) (*entity.EvaluationResult, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, generated_at, overall, issue_count, warning_count, alerts, created_at
		FROM evaluation_runs
		ORDER BY generated_at DESC
		LIMIT 1
	`)

	run, err := ScanRunRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	entries, err := r.loadEntries(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	return ToResult(run, entries)
}

// FindSince возвращает run'ы с указанного момента в хронологическом порядке
func (r *PostgresEvaluationRepository) FindSince(ctx context.Context, since time.Time) ([]*entity.EvaluationResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, generated_at, overall, issue_count, warning_count, alerts, created_at
		FROM evaluation_runs
		WHERE generated_at >= $1
		ORDER BY generated_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunDBModel
	for rows.Next() {
		run, err := ScanRunRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	results := make([]*entity.EvaluationResult, 0, len(runs))
	for _, run := range runs {
		entries, err := r.loadEntries(ctx, run.ID)
		if err != nil {
			return nil, err
		}

		result, err := ToResult(run, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to convert to entity: %w", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// loadEntries загружает записи одного run'а
func (r *PostgresEvaluationRepository) loadEntries(ctx context.Context, runID string) ([]EntryDBModel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, target_name, target_kind, check_name, category, unit, value, taken_at, verdict
		FROM evaluation_entries
		WHERE run_id = $1
		ORDER BY target_name, check_name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryDBModel
	for rows.Next() {
		var model EntryDBModel
		err := rows.Scan(
			&model.RunID,
			&model.TargetName,
			&model.TargetKind,
			&model.CheckName,
			&model.Category,
			&model.Unit,
			&model.Value,
			&model.TakenAt,
			&model.Verdict,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
