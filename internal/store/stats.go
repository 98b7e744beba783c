package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/blinker/internal/stats"
)

// StatsRepository persists one stats record per key.
type StatsRepository struct {
	db *sql.DB
}

// Stats returns the stats repository for this store.
func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{db: s.db}
}

// Load returns the stats saved under key.
// It returns nil, nil when there is no record or the record cannot be decoded.
func (r *StatsRepository) Load(key string) (*stats.UserStats, error) {
	var data string
	err := r.db.QueryRow(`SELECT data FROM user_stats WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load stats %s: %w", key, err)
	}

	var us stats.UserStats
	if err := json.Unmarshal([]byte(data), &us); err != nil {
		log.Printf("Ignoring corrupt stats record %s: %v", key, err)
		return nil, nil
	}
	return &us, nil
}

// Save replaces the stats saved under key.
func (r *StatsRepository) Save(key string, us stats.UserStats) error {
	data, err := json.Marshal(us)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO user_stats (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save stats %s: %w", key, err)
	}
	return nil
}

// Reset saves fresh stats for a profile and clears its hit history in one transaction.
func (s *Store) Reset(profileID string, fresh stats.UserStats) error {
	data, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM hits WHERE profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("clear hits: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO user_stats (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		profileID, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}

	return tx.Commit()
}
