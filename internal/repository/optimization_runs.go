package repository

import (
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
)

// InsertOptimizationRun 在一个事务中保存优化结果以及每一趟行程的安排和每种算法的结果
func (r *Repository) InsertOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO optimization_runs (run_date, strategy, fitness, total_time, congestion, speed, violations, rejected, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, published, created_at, version
	`

	args := []any{
		run.RunDate,
		run.Strategy,
		run.Fitness,
		run.Breakdown.TotalTime,
		run.Breakdown.Congestion,
		run.Breakdown.Speed,
		run.Breakdown.Violations,
		run.Rejected,
		run.CreatedBy,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.Published, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	query = `
		INSERT INTO optimization_run_entries (optimization_run_id, trip_id, driver_id, scheduled_entry_time, trip_hours)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, entry := range run.Entries {
		if _, err := tx.ExecContext(ctx, query, run.ID, entry.TripID, entry.DriverID, entry.ScheduledEntryTime, entry.TripHours); err != nil {
			return err
		}
	}

	query = `
		INSERT INTO optimization_run_candidates (optimization_run_id, strategy, fitness, iterations, duration_ms, stop_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, c := range run.Candidates {
		if _, err := tx.ExecContext(ctx, query, run.ID, c.Strategy, c.Fitness, c.Iterations, c.DurationMs, c.StopReason); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const optimizationRunColumns = `id, run_date, strategy, fitness, total_time, congestion, speed, violations, rejected, published, created_by, created_at, version`

func optimizationRunDst(run *domain.OptimizationRun) []any {
	return []any{
		&run.ID,
		&run.RunDate,
		&run.Strategy,
		&run.Fitness,
		&run.Breakdown.TotalTime,
		&run.Breakdown.Congestion,
		&run.Breakdown.Speed,
		&run.Breakdown.Violations,
		&run.Rejected,
		&run.Published,
		&run.CreatedBy,
		&run.CreatedAt,
		&run.Version,
	}
}

// GetAllOptimizationRuns 只返回概要信息，不包含行程安排
func (r *Repository) GetAllOptimizationRuns() ([]*domain.OptimizationRun, error) {
	query := `SELECT ` + optimizationRunColumns + ` FROM optimization_runs ORDER BY id DESC`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.OptimizationRun, 0)
	for rows.Next() {
		run := &domain.OptimizationRun{}
		if err := rows.Scan(optimizationRunDst(run)...); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

func (r *Repository) GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error) {
	query := `SELECT ` + optimizationRunColumns + ` FROM optimization_runs WHERE id = $1`
	return r.getOptimizationRun(query, id)
}

func (r *Repository) GetLatestOptimizationRun() (*domain.OptimizationRun, error) {
	query := `SELECT ` + optimizationRunColumns + ` FROM optimization_runs ORDER BY id DESC LIMIT 1`
	return r.getOptimizationRun(query)
}

func (r *Repository) getOptimizationRun(query string, args ...any) (*domain.OptimizationRun, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	run := &domain.OptimizationRun{}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(optimizationRunDst(run)...); err != nil {
		return nil, err
	}

	// 行程安排
	query = `
		SELECT trip_id, driver_id, scheduled_entry_time, trip_hours
		FROM optimization_run_entries
		WHERE optimization_run_id = $1
		ORDER BY scheduled_entry_time, trip_id
	`
	rows, err := r.dbpool.QueryContext(ctx, query, run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Entries = make([]domain.OptimizationRunEntry, 0)
	for rows.Next() {
		var entry domain.OptimizationRunEntry
		if err := rows.Scan(&entry.TripID, &entry.DriverID, &entry.ScheduledEntryTime, &entry.TripHours); err != nil {
			return nil, err
		}
		run.Entries = append(run.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 参与比较的算法
	query = `
		SELECT strategy, fitness, iterations, duration_ms, stop_reason
		FROM optimization_run_candidates
		WHERE optimization_run_id = $1
		ORDER BY id
	`
	candidateRows, err := r.dbpool.QueryContext(ctx, query, run.ID)
	if err != nil {
		return nil, err
	}
	defer candidateRows.Close()

	run.Candidates = make([]domain.OptimizationRunCandidate, 0)
	for candidateRows.Next() {
		var c domain.OptimizationRunCandidate
		if err := candidateRows.Scan(&c.Strategy, &c.Fitness, &c.Iterations, &c.DurationMs, &c.StopReason); err != nil {
			return nil, err
		}
		run.Candidates = append(run.Candidates, c)
	}
	if err := candidateRows.Err(); err != nil {
		return nil, err
	}

	return run, nil
}

// MarkOptimizationRunPublished 标记为已发布，已经发布过的返回 sql.ErrNoRows
func (r *Repository) MarkOptimizationRunPublished(run *domain.OptimizationRun) error {
	query := `
		UPDATE optimization_runs
		SET published = TRUE, version = version + 1
		WHERE id = $1 AND version = $2 AND NOT published
		RETURNING published, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, run.ID, run.Version).Scan(&run.Published, &run.Version)
}
