package sqlite

import (
	"database/sql"
	"fmt"

	"framepruner/internal/models"
)

// RunRepository implements repository.RunRepository for SQLite.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Insert adds a new run record to the database.
func (r *RunRepository) Insert(run *models.Run) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO runs (id, directory, started_at, status, dry_run, frames)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Directory, run.StartedAt, run.Status, run.DryRun, run.Frames)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish stores the outcome of a run.
func (r *RunRepository) Finish(run *models.Run) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		UPDATE runs SET finished_at = ?, status = ?, frames = ?, discarded = ?,
			mean_probability = ?, stddev_probability = ?, max_probability = ?, error = ?
		WHERE id = ?
	`, run.FinishedAt, run.Status, run.Frames, run.Discarded,
		run.MeanProbability, run.StdDevProbability, run.MaxProbability, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

const runColumns = `id, directory, started_at, finished_at, status, dry_run, frames, discarded,
	mean_probability, stddev_probability, max_probability, error`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*models.Run, error) {
	var run models.Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.Directory, &run.StartedAt, &finished, &run.Status, &run.DryRun,
		&run.Frames, &run.Discarded, &run.MeanProbability, &run.StdDevProbability, &run.MaxProbability, &run.Error)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*models.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	run, err := scanRun(r.db.Conn().QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetAll retrieves runs based on filter criteria, newest first.
func (r *RunRepository) GetAll(filter *models.RunFilter) ([]models.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := []interface{}{}

	if filter != nil {
		if filter.Directory != "" {
			query += " AND directory = ?"
			args = append(args, filter.Directory)
		}
		if filter.Status != "" {
			query += " AND status = ?"
			args = append(args, filter.Status)
		}
	}

	query += " ORDER BY started_at DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Delete removes a run and its verdicts.
func (r *RunRepository) Delete(id string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
