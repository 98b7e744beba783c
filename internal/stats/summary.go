package stats

import (
	"fmt"
	"time"
)

// Period names a bucket granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period name. An empty name selects PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAll, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Summary is the bucket for the period containing a reference time.
type Summary struct {
	Period Period `json:"period"`
	Key    string `json:"key"`
	Bucket
}

// Summarize returns the bucket of s for the period that contains now.
// PeriodAll reports the lifetime totals.
func Summarize(s UserStats, period Period, now time.Time) Summary {
	switch period {
	case PeriodDay:
		k := DayKey(now)
		return Summary{Period: period, Key: k, Bucket: s.DailyStats[k]}
	case PeriodWeek:
		k := WeekKey(now)
		return Summary{Period: period, Key: k, Bucket: s.WeeklyStats[k]}
	case PeriodMonth:
		k := MonthKey(now)
		return Summary{Period: period, Key: k, Bucket: s.MonthlyStats[k]}
	default:
		return Summary{
			Period: PeriodAll,
			Bucket: Bucket{
				Hits:       s.TotalHits,
				Points:     s.Points,
				TotalTime:  s.TotalTimeHitting,
				LongestHit: s.LongestHit,
			},
		}
	}
}
