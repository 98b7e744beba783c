package store

import (
	"encoding/json"
	"log"
	"sort"

	"github.com/ayusman/blinker/internal/stats"
)

// LeaderboardEntry is one profile's standing.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Blinkers int    `json:"blinkers"`
}

// Leaderboard ranks every profile with saved stats by points, highest first.
// Ties are broken by username.
func (s *Store) Leaderboard() ([]LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT p.username, us.data FROM profiles p JOIN user_stats us ON us.key = p.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]LeaderboardEntry, 0)
	for rows.Next() {
		var username, data string
		if err := rows.Scan(&username, &data); err != nil {
			return nil, err
		}

		var us stats.UserStats
		if err := json.Unmarshal([]byte(data), &us); err != nil {
			log.Printf("Skipping corrupt stats for %s: %v", username, err)
			continue
		}
		entries = append(entries, LeaderboardEntry{Username: username, Points: us.Points, Blinkers: us.Blinkers})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	return entries, nil
}
