package sqlite

import (
	"fmt"

	"framepruner/internal/models"
)

// VerdictRepository implements repository.VerdictRepository for SQLite.
type VerdictRepository struct {
	db *DB
}

// NewVerdictRepository creates a new SQLite verdict repository.
func NewVerdictRepository(db *DB) *VerdictRepository {
	return &VerdictRepository{db: db}
}

// InsertBatch adds multiple verdicts in a single transaction.
func (r *VerdictRepository) InsertBatch(verdicts []models.Verdict) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO verdicts (run_id, frame_index, filename, next_filename, category, discarded,
			probability, score, regions, total_regions, hash_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range verdicts {
		if _, err := stmt.Exec(v.RunID, v.FrameIndex, v.Filename, v.NextFilename, v.Category, v.Discarded,
			v.Probability, v.Score, v.Regions, v.TotalRegions, v.HashDistance); err != nil {
			return fmt.Errorf("failed to insert verdict: %w", err)
		}
	}

	return tx.Commit()
}

// GetByRunID retrieves the verdicts of a run in frame order.
func (r *VerdictRepository) GetByRunID(runID string, discardedOnly bool) ([]models.Verdict, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, run_id, frame_index, filename, next_filename, category, discarded,
			probability, score, regions, total_regions, hash_distance
		FROM verdicts WHERE run_id = ?`
	if discardedOnly {
		query += " AND discarded = 1"
	}
	query += " ORDER BY frame_index"

	rows, err := r.db.Conn().Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.Verdict
	for rows.Next() {
		var v models.Verdict
		if err := rows.Scan(&v.ID, &v.RunID, &v.FrameIndex, &v.Filename, &v.NextFilename, &v.Category, &v.Discarded,
			&v.Probability, &v.Score, &v.Regions, &v.TotalRegions, &v.HashDistance); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, rows.Err()
}

// GetCategoryCounts returns how many verdicts of a run fell into each category.
func (r *VerdictRepository) GetCategoryCounts(runID string) (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT category, COUNT(*) FROM verdicts WHERE run_id = ? GROUP BY category
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}
