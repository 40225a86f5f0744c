package crumbs

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := t0.Add(-d)
	return &t
}

func TestComputeStateNoLastActive(t *testing.T) {
	st := ComputeState(42, nil, t0)
	if st.Score != 42 || st.Decay != 0 {
		t.Errorf("got score=%d decay=%d, want 42/0", st.Score, st.Decay)
	}
	if st.Status != Alive {
		t.Errorf("Status = %q, want alive", st.Status)
	}
}

func TestComputeStateDecay(t *testing.T) {
	tests := []struct {
		name    string
		stored  int
		elapsed time.Duration
		want    int
		decay   int
	}{
		{"no time", 50, 0, 50, 0},
		{"under one unit", 50, 11*time.Minute + 59*time.Second, 50, 0},
		{"exactly one unit", 50, 12 * time.Minute, 49, 1},
		{"one hour", 50, time.Hour, 45, 5},
		{"fractional hours", 50, 90 * time.Minute, 43, 7},
		{"floors at minus one", 10, 48 * time.Hour, -1, 240},
		{"already negative", -1, 2 * time.Hour, -1, 10},
		{"clock skew", 50, -time.Hour, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ComputeState(tt.stored, at(tt.elapsed), t0)
			if st.Score != tt.want {
				t.Errorf("Score = %d, want %d", st.Score, tt.want)
			}
			if st.Decay != tt.decay {
				t.Errorf("Decay = %d, want %d", st.Decay, tt.decay)
			}
		})
	}
}

func TestComputeStateMonotonic(t *testing.T) {
	for _, s := range []int{0, 1, 99, 100, 300, 1000} {
		prev := s
		for h := 0; h <= 300; h++ {
			elapsed := time.Duration(h) * 17 * time.Minute
			got := ComputeState(s, at(elapsed), t0).Score
			if got > prev {
				t.Fatalf("score %d rose from %d to %d at %v", s, prev, got, elapsed)
			}
			want := max(Floor, s-int(elapsed/(12*time.Minute)))
			if got != want {
				t.Fatalf("score %d at %v = %d, want %d", s, elapsed, got, want)
			}
			prev = got
		}
	}
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-1, TierStarved},
		{0, TierStarved},
		{1, TierNewbie},
		{99, TierNewbie},
		{100, TierBreadMaker},
		{299, TierBreadMaker},
		{300, TierMasterChef},
		{5000, TierMasterChef},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(1) != Alive {
		t.Error("score 1 should be alive")
	}
	if StatusFor(0) != Dead || StatusFor(-1) != Dead {
		t.Error("score <= 0 should be dead")
	}
}

func TestNoRecord(t *testing.T) {
	st := NoRecord()
	if st.Score != 0 || st.Status != Dead || st.Tier != TierNewbie {
		t.Errorf("NoRecord = %+v, want {0 dead Newbie}", st)
	}
}
