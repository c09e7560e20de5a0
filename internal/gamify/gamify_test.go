package gamify

import (
	"testing"
	"time"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		points int64
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{999, 4},
		{1000, 5},
		{1999, 5},
		{2000, 6},
		{-50, 1},
	}

	for _, tt := range tests {
		if got := Level(tt.points); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.points, got, tt.want)
		}
	}
}

func TestLevel_Monotonic(t *testing.T) {
	prev := Level(0)
	for p := int64(1); p <= 5000; p++ {
		l := Level(p)
		if l < prev {
			t.Fatalf("Level(%d) = %d dropped below Level(%d) = %d", p, l, p-1, prev)
		}
		prev = l
	}
}

func TestPointsForNextLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{1, 100},
		{2, 250},
		{3, 500},
		{4, 1000},
		{5, 2000},
		{0, 100}, // clamped to level 1
	}

	for _, tt := range tests {
		if got := PointsForNextLevel(tt.level); got != tt.want {
			t.Errorf("PointsForNextLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelProgress(t *testing.T) {
	tests := []struct {
		name   string
		points int64
		want   float64
	}{
		{"fresh profile", 0, 0},
		{"halfway through level one", 50, 0.5},
		{"level boundary restarts", 100, 0},
		{"halfway through level two", 175, 0.5},
		{"negative clamps", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LevelProgress(tt.points)
			if got < tt.want-0.001 || got > tt.want+0.001 {
				t.Errorf("LevelProgress(%d) = %v, want %v", tt.points, got, tt.want)
			}
		})
	}
}

func TestUpdateStreak(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		profile    Profile
		wantStreak int
		wantBonus  int64
		wantPoints int64
	}{
		{
			name:       "first activity starts at one with no bonus",
			profile:    Profile{Points: 40},
			wantStreak: 1,
			wantBonus:  0,
			wantPoints: 40,
		},
		{
			name:       "same day is a no-op",
			profile:    Profile{Points: 40, Streak: 3, StreakUpdated: now.Add(-2 * time.Hour)},
			wantStreak: 3,
			wantBonus:  0,
			wantPoints: 40,
		},
		{
			name:       "next day increments and pays the bonus",
			profile:    Profile{Points: 40, Streak: 3, StreakUpdated: now.AddDate(0, 0, -1)},
			wantStreak: 4,
			wantBonus:  20,
			wantPoints: 60,
		},
		{
			name:       "a gap resets to one without a bonus",
			profile:    Profile{Points: 40, Streak: 7, StreakUpdated: now.AddDate(0, 0, -5)},
			wantStreak: 1,
			wantBonus:  0,
			wantPoints: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bonus := UpdateStreak(tt.profile, now)
			if got.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, want %d", got.Streak, tt.wantStreak)
			}
			if bonus != tt.wantBonus {
				t.Errorf("bonus = %d, want %d", bonus, tt.wantBonus)
			}
			if got.Points != tt.wantPoints {
				t.Errorf("Points = %d, want %d", got.Points, tt.wantPoints)
			}
		})
	}
}

func TestUpdateStreak_MidnightBoundary(t *testing.T) {
	// 23:59 to 00:01 the next calendar day still counts as one day.
	p := Profile{Streak: 1, StreakUpdated: time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC)}
	got, bonus := UpdateStreak(p, time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC))
	if got.Streak != 2 {
		t.Errorf("Streak = %d, want 2", got.Streak)
	}
	if bonus != 10 {
		t.Errorf("bonus = %d, want 10", bonus)
	}
}

func TestAward(t *testing.T) {
	p := Award(Profile{Points: 10}, PointsPerTransaction)
	if p.Points != 20 {
		t.Errorf("Points = %d, want 20", p.Points)
	}
	p = Award(p, -100)
	if p.Points != 20 {
		t.Errorf("negative awards must be ignored, Points = %d", p.Points)
	}
	p = Award(p, 0)
	if p.Points != 20 {
		t.Errorf("zero award changed points to %d", p.Points)
	}
}
