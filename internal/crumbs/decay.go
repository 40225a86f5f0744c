// Package crumbs tracks the per-user engagement score.
//
// Decay Algorithm:
//   - 5 crumbs lost per hour of inactivity, only whole units apply
//   - Floor: -1 (a starved user is "dead", not infinitely negative)
//   - Applied lazily on read; the decayed score and a fresh last-active time
//     are written back together so the same window is never consumed twice
//   - Awards refresh last-active, which restarts the decay window
package crumbs

import "time"

const (
	// DecayPerHour is the number of crumbs lost per hour of inactivity.
	DecayPerHour = 5
	// Floor is the lowest score decay can produce.
	Floor = -1

	decayUnit = time.Hour / DecayPerHour
)

// Crumbs awarded per action.
const (
	AwardProjectCreated  = 10
	AwardTranscriptAdded = 30
	AwardResearchRun     = 15
)

// Status is the mascot state shown to the user.
type Status string

const (
	Alive Status = "alive"
	Dead  Status = "dead"
)

// Tier labels.
const (
	TierStarved    = "Starved"
	TierNewbie     = "Newbie"
	TierBreadMaker = "Bread Maker"
	TierMasterChef = "Master Chef"
)

// Balance is the stored engagement record for a user.
type Balance struct {
	Score        int
	LastActiveAt *time.Time
}

// State is the decay-adjusted view of a balance.
type State struct {
	Score  int
	Status Status
	Tier   string
	// Decay is the number of crumbs consumed by this computation.
	// When positive, the caller owes a write-back.
	Decay int
}

// ComputeState applies inactivity decay to a stored score.
func ComputeState(stored int, lastActiveAt *time.Time, now time.Time) State {
	score := stored
	decay := 0

	if lastActiveAt != nil {
		// Integer division of the elapsed time by one decay unit is
		// floor(hours * 5) without float rounding at the boundaries.
		if d := int(now.Sub(*lastActiveAt) / decayUnit); d > 0 {
			decay = d
			score = max(Floor, stored-d)
		}
	}

	return State{
		Score:  score,
		Status: StatusFor(score),
		Tier:   TierFor(score),
		Decay:  decay,
	}
}

// StatusFor reports whether a score keeps the mascot alive.
func StatusFor(score int) Status {
	if score > 0 {
		return Alive
	}
	return Dead
}

// TierFor maps a score to its tier label.
func TierFor(score int) string {
	switch {
	case score <= 0:
		return TierStarved
	case score < 100:
		return TierNewbie
	case score < 300:
		return TierBreadMaker
	default:
		return TierMasterChef
	}
}

// NoRecord is the state reported for a user that has never earned crumbs.
func NoRecord() State {
	return State{Score: 0, Status: Dead, Tier: TierNewbie}
}
