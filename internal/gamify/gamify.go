// Package gamify computes the points, level curve and daily streak
// shown on the profile screen. Everything here is pure; persistence of
// the profile belongs to the storage layer.
package gamify

import (
	"time"

	"saldo/internal/core"
)

// Points awarded per user action.
const (
	PointsPerTransaction = 10
	PointsPerScan        = 25
	StreakBonusPerDay    = 5
)

// Profile is the persisted gamification state for one user.
type Profile struct {
	Points        int64
	Streak        int
	StreakUpdated time.Time
}

// Level boundaries sit at cumulative points 0, 100, 250, 500, 1000,
// 2000, ... — an eased first step, then doubling.
func levelFloor(level int) int64 {
	switch {
	case level <= 1:
		return 0
	case level == 2:
		return 100
	default:
		return 250 << (level - 3)
	}
}

// Level returns the level for a points total. Level(0) is 1 and the
// function is monotonically non-decreasing in points.
func Level(points int64) int {
	if points < 0 {
		points = 0
	}
	level := 1
	for points >= levelFloor(level+1) {
		level++
	}
	return level
}

// PointsForNextLevel returns the cumulative points at which the next
// level after `level` begins.
func PointsForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return levelFloor(level + 1)
}

// LevelProgress returns the fraction of the current level completed,
// clamped to [0, 1].
func LevelProgress(points int64) float64 {
	if points < 0 {
		points = 0
	}
	level := Level(points)
	floor := levelFloor(level)
	next := levelFloor(level + 1)
	if next <= floor {
		return 0
	}
	p := float64(points-floor) / float64(next-floor)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// UpdateStreak advances the daily streak by comparing the last update
// to now in whole calendar days. Same day leaves it unchanged; exactly
// one day increments it and awards StreakBonusPerDay times the new
// streak; a longer gap resets the streak to 1 with no bonus.
func UpdateStreak(p Profile, now time.Time) (Profile, int64) {
	if p.StreakUpdated.IsZero() {
		p.Streak = 1
		p.StreakUpdated = now
		return p, 0
	}

	switch days := core.DaysBetween(p.StreakUpdated, now); {
	case days <= 0:
		return p, 0
	case days == 1:
		p.Streak++
		p.StreakUpdated = now
		bonus := int64(StreakBonusPerDay * p.Streak)
		p.Points += bonus
		return p, bonus
	default:
		p.Streak = 1
		p.StreakUpdated = now
		return p, 0
	}
}

// Award adds points for an action and returns the updated profile.
func Award(p Profile, points int64) Profile {
	if points > 0 {
		p.Points += points
	}
	return p
}
