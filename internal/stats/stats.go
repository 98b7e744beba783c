// Package stats accumulates scored hits into running totals and calendar buckets.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/blinker/internal/hit"
)

// Bucket accumulates hits within one calendar period.
type Bucket struct {
	Hits       int     `json:"hits"`
	Points     int     `json:"points"`
	TotalTime  float64 `json:"totalTime"`
	LongestHit float64 `json:"longestHit"`
}

func (b Bucket) add(h hit.ScoredHit) Bucket {
	b.Hits++
	b.Points += h.Points
	b.TotalTime += h.DurationSeconds
	b.LongestHit = math.Max(b.LongestHit, h.DurationSeconds)
	return b
}

// UserStats is the persisted per-installation record. Durations are in seconds.
type UserStats struct {
	Points             int               `json:"points"`
	TotalHits          int               `json:"totalHits"`
	TotalSessions      int               `json:"totalSessions"`
	Blinkers           int               `json:"blinkers"`
	LongestHit         float64           `json:"longestHit"`
	AverageHitDuration float64           `json:"averageHitDuration"`
	TotalTimeHitting   float64           `json:"totalTimeHitting"`
	LastActive         time.Time         `json:"lastActive"`
	Efficiency         float64           `json:"efficiency"`
	DailyStats         map[string]Bucket `json:"dailyStats"`
	WeeklyStats        map[string]Bucket `json:"weeklyStats"`
	MonthlyStats       map[string]Bucket `json:"monthlyStats"`
}

// New returns zeroed stats with empty bucket maps.
func New() UserStats {
	return UserStats{
		DailyStats:   map[string]Bucket{},
		WeeklyStats:  map[string]Bucket{},
		MonthlyStats: map[string]Bucket{},
	}
}

// Clone returns a deep copy of s.
func (s UserStats) Clone() UserStats {
	s.DailyStats = cloneBuckets(s.DailyStats)
	s.WeeklyStats = cloneBuckets(s.WeeklyStats)
	s.MonthlyStats = cloneBuckets(s.MonthlyStats)
	return s
}

func cloneBuckets(m map[string]Bucket) map[string]Bucket {
	out := make(map[string]Bucket, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Apply returns stats updated with h. The input is not modified.
func Apply(s UserStats, h hit.ScoredHit) UserStats {
	out := s.Clone()

	out.TotalHits++
	out.TotalTimeHitting += h.DurationSeconds
	out.AverageHitDuration = out.TotalTimeHitting / float64(out.TotalHits)
	out.LongestHit = math.Max(out.LongestHit, h.DurationSeconds)
	out.Points += h.Points
	out.Efficiency = math.Min(100, (out.AverageHitDuration/10)*100)
	out.LastActive = h.Timestamp
	if h.IsBlinker() {
		out.Blinkers++
	}

	day, week, month := DayKey(h.Timestamp), WeekKey(h.Timestamp), MonthKey(h.Timestamp)
	out.DailyStats[day] = out.DailyStats[day].add(h)
	out.WeeklyStats[week] = out.WeeklyStats[week].add(h)
	out.MonthlyStats[month] = out.MonthlyStats[month].add(h)

	return out
}

// StartSession records the start of a capture session.
func StartSession(s UserStats, now time.Time) UserStats {
	out := s.Clone()
	out.TotalSessions++
	out.LastActive = now
	return out
}

// DayKey formats t as YYYY-MM-DD in t's location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey formats t as YYYY-W<n> where n is ceil(dayOfMonth/7). This is a
// week-of-month index, not an ISO week number.
func WeekKey(t time.Time) string {
	return fmt.Sprintf("%d-W%d", t.Year(), (t.Day()+6)/7)
}

// MonthKey formats t as YYYY-MM in t's location.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
