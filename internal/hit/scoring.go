package hit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownMode is returned for a scoring mode name that is not recognised.
var ErrUnknownMode = errors.New("unknown scoring mode")

// Mode selects the scoring policy.
type Mode string

const (
	// ModeTiered bounds hits to [MinHitSeconds, MaxHitSeconds] and awards floor(seconds) points.
	ModeTiered Mode = "tiered"
	// ModeClassic awards fixed points at the 10s and 15s breakpoints and never rejects.
	ModeClassic Mode = "classic"
)

// ParseMode validates a mode name. An empty name selects ModeTiered.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTiered:
		return ModeTiered, nil
	case ModeClassic:
		return ModeClassic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Tier is the scoring bracket a hit landed in.
type Tier string

const (
	TierLegendary  Tier = "legendary"
	TierDemon      Tier = "demon"
	TierBlinker    Tier = "blinker"
	TierSolid      Tier = "solid"
	TierWarmup     Tier = "warmup"
	TierTakeBreak  Tier = "take_break"
	TierNotBlinker Tier = "not_blinker"
)

// RejectReason explains why a completed hit was not scored.
type RejectReason string

const (
	RejectTooQuick RejectReason = "too_quick"
	RejectTooLong  RejectReason = "too_long"
)

// Default tiered bounds in seconds.
const (
	DefaultMinHitSeconds = 1.0
	DefaultMaxHitSeconds = 30.0
)

// ScoredHit is a completed hit that passed the policy.
type ScoredHit struct {
	ID              string    `json:"id"`
	DurationSeconds float64   `json:"durationSeconds"`
	Tier            Tier      `json:"tier"`
	Points          int       `json:"points"`
	Timestamp       time.Time `json:"timestamp"`
	Mode            Mode      `json:"mode"`
}

// IsBlinker reports whether the hit counts towards the blinkers tally.
func (h ScoredHit) IsBlinker() bool {
	return h.Tier == TierBlinker
}

// Verdict is the outcome of scoring one completed duration.
// Hit is only meaningful when Accepted is true.
type Verdict struct {
	Accepted bool         `json:"accepted"`
	Hit      ScoredHit    `json:"hit"`
	Reason   RejectReason `json:"reason,omitempty"`
	Message  string       `json:"message"`
}

// Policy scores completed hit durations.
type Policy interface {
	// Mode identifies the policy.
	Mode() Mode

	// Score classifies a hit of duration d that ended at the given time.
	Score(d time.Duration, at time.Time) Verdict
}

// Config selects and parameterises a Policy.
type Config struct {
	Mode          Mode    `json:"mode" toml:"mode"`
	MinHitSeconds float64 `json:"minHitSeconds" toml:"min_hit_seconds"`
	MaxHitSeconds float64 `json:"maxHitSeconds" toml:"max_hit_seconds"`
}

// DefaultConfig returns the tiered policy with its default bounds.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeTiered,
		MinHitSeconds: DefaultMinHitSeconds,
		MaxHitSeconds: DefaultMaxHitSeconds,
	}
}

// NewPolicy builds the policy named by config.Mode.
func NewPolicy(config Config) (Policy, error) {
	mode, err := ParseMode(string(config.Mode))
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeClassic:
		return ClassicPolicy{}, nil
	default:
		p := TieredPolicy{MinSeconds: config.MinHitSeconds, MaxSeconds: config.MaxHitSeconds}
		if p.MinSeconds <= 0 {
			p.MinSeconds = DefaultMinHitSeconds
		}
		if p.MaxSeconds <= 0 {
			p.MaxSeconds = DefaultMaxHitSeconds
		}
		if p.MaxSeconds < p.MinSeconds {
			return nil, fmt.Errorf("max hit %.1fs below min hit %.1fs", p.MaxSeconds, p.MinSeconds)
		}
		return p, nil
	}
}

// TieredPolicy rejects hits outside [MinSeconds, MaxSeconds] and awards floor(seconds).
type TieredPolicy struct {
	MinSeconds float64
	MaxSeconds float64
}

// Mode returns ModeTiered.
func (TieredPolicy) Mode() Mode { return ModeTiered }

// Score implements Policy.
func (p TieredPolicy) Score(d time.Duration, at time.Time) Verdict {
	secs := d.Seconds()
	prefix := fmt.Sprintf("Hit lasted %.1fs.", secs)

	switch {
	case secs < p.MinSeconds:
		return Verdict{Reason: RejectTooQuick, Message: prefix + " Too quick."}
	case secs > p.MaxSeconds:
		return Verdict{Reason: RejectTooLong, Message: prefix + " Too long, take a break."}
	}

	var (
		tier  Tier
		label string
	)
	switch {
	case secs >= 20:
		tier, label = TierLegendary, "Legendary!"
	case secs >= 15:
		tier, label = TierDemon, "Double Rip Demon!"
	case secs >= 10:
		tier, label = TierBlinker, "Blinker!"
	case secs >= 5:
		tier, label = TierSolid, "Solid."
	default:
		tier, label = TierWarmup, "Warmup."
	}
	points := int(math.Floor(secs))

	return Verdict{
		Accepted: true,
		Hit:      newHit(secs, tier, points, at, ModeTiered),
		Message:  fmt.Sprintf("%s %s +%d points", prefix, label, points),
	}
}

// ClassicPolicy awards 15 points from 15s, 10 points from 10s and nothing below.
// Hits of 20s or more earn nothing but are still recorded.
type ClassicPolicy struct{}

// Mode returns ModeClassic.
func (ClassicPolicy) Mode() Mode { return ModeClassic }

// Score implements Policy. Every duration is accepted.
func (ClassicPolicy) Score(d time.Duration, at time.Time) Verdict {
	secs := d.Seconds()
	msg := fmt.Sprintf("Hit lasted %.1fs.", secs)

	var (
		tier   Tier
		points int
	)
	switch {
	case secs >= 20:
		tier = TierTakeBreak
		msg += " Take a break and breathe!"
	case secs >= 15:
		tier, points = TierDemon, 15
		msg += " Double Rip Demon! +15 points"
	case secs >= 10:
		tier, points = TierBlinker, 10
		msg += " Blinker! +10 points"
	default:
		tier = TierNotBlinker
		msg += " Not a blinker."
	}

	return Verdict{
		Accepted: true,
		Hit:      newHit(secs, tier, points, at, ModeClassic),
		Message:  msg,
	}
}

func newHit(secs float64, tier Tier, points int, at time.Time, mode Mode) ScoredHit {
	return ScoredHit{
		ID:              uuid.NewString(),
		DurationSeconds: secs,
		Tier:            tier,
		Points:          points,
		Timestamp:       at,
		Mode:            mode,
	}
}
