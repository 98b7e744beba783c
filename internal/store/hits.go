package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ayusman/blinker/internal/hit"
)

// DefaultHitLimit bounds ListRecent when no limit is given.
const DefaultHitLimit = 50

// HitRecord is a scored hit stored in the history.
type HitRecord struct {
	ProfileID string `json:"profileId"`
	hit.ScoredHit
}

// HitRepository stores the history of scored hits.
type HitRepository struct {
	db *sql.DB
}

// Hits returns the hit repository for this store.
func (s *Store) Hits() *HitRepository {
	return &HitRepository{db: s.db}
}

// Create inserts a scored hit for a profile.
func (r *HitRepository) Create(profileID string, h hit.ScoredHit) error {
	_, err := r.db.Exec(
		`INSERT INTO hits (id, profile_id, duration, tier, points, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, profileID, h.DurationSeconds, string(h.Tier), h.Points, string(h.Mode), h.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

// ListRecent returns up to limit hits for a profile, newest first.
func (r *HitRepository) ListRecent(profileID string, limit int) ([]HitRecord, error) {
	if limit <= 0 {
		limit = DefaultHitLimit
	}

	rows, err := r.db.Query(
		`SELECT id, profile_id, duration, tier, points, mode, created_at
		 FROM hits WHERE profile_id = ? ORDER BY created_at DESC LIMIT ?`,
		profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]HitRecord, 0)
	for rows.Next() {
		var (
			rec        HitRecord
			tier, mode string
			created    time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.ProfileID, &rec.DurationSeconds, &tier, &rec.Points, &mode, &created); err != nil {
			return nil, err
		}
		rec.Tier = hit.Tier(tier)
		rec.Mode = hit.Mode(mode)
		rec.Timestamp = created
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored hits for a profile.
func (r *HitRepository) Count(profileID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM hits WHERE profile_id = ?`, profileID).Scan(&n)
	return n, err
}
