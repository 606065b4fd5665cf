package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bobarin/kobanashi/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, input, config_overrides, scene_range, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		run.ID, run.Input, run.ConfigOverrides, run.SceneRange, run.Status,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
}

func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
		SELECT id, input, config_overrides, scene_range, status,
			output_asset_id, error_stage, error_message, created_at, updated_at
		FROM runs
		WHERE id = $1
	`

	run := &models.Run{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Input, &run.ConfigOverrides, &run.SceneRange, &run.Status,
		&run.OutputAssetID, &run.ErrorStage, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

func (db *DB) ListRuns(ctx context.Context, statusFilter string, limit, offset int) ([]models.Run, error) {
	query := `
		SELECT id, input, config_overrides, scene_range, status,
			output_asset_id, error_stage, error_message, created_at, updated_at
		FROM runs
	`
	args := []interface{}{}
	if statusFilter != "" {
		query += " WHERE status = $1"
		args = append(args, statusFilter)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		if err := rows.Scan(
			&run.ID, &run.Input, &run.ConfigOverrides, &run.SceneRange, &run.Status,
			&run.OutputAssetID, &run.ErrorStage, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func (db *DB) CountRuns(ctx context.Context, statusFilter string) (int, error) {
	query := `SELECT COUNT(*) FROM runs`
	args := []interface{}{}
	if statusFilter != "" {
		query += " WHERE status = $1"
		args = append(args, statusFilter)
	}

	var total int
	err := db.QueryRowContext(ctx, query, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return total, nil
}

func (db *DB) UpdateRunStatus(ctx context.Context, id uuid.UUID, status models.RunStatus) error {
	_, err := db.ExecContext(ctx, `UPDATE runs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

func (db *DB) UpdateRunError(ctx context.Context, id uuid.UUID, stage, message string) error {
	query := `
		UPDATE runs
		SET status = $1, error_stage = $2, error_message = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.RunStatusFailed, stage, message, id)
	if err != nil {
		return fmt.Errorf("failed to update run error: %w", err)
	}
	return nil
}

func (db *DB) UpdateRunOutputAsset(ctx context.Context, id uuid.UUID, assetID uuid.UUID) error {
	query := `UPDATE runs SET output_asset_id = $1, status = $2, updated_at = NOW() WHERE id = $3`
	_, err := db.ExecContext(ctx, query, assetID, models.RunStatusCompleted, id)
	if err != nil {
		return fmt.Errorf("failed to update run output asset: %w", err)
	}
	return nil
}
