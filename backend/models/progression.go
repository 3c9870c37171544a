package models

import (
	"time"

	"gorm.io/gorm"
)

// PassThresholdPercent is the minimum percentage a completed test needs
// to count as passed.
const PassThresholdPercent = 70

// TestResult keeps one row per (user, test): the best attempt. The row is
// replaced only when a retake scores a higher percentage, but Attempts
// increments on every retake.
type TestResult struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex:idx_results_user_test"`
	TestID           uint `gorm:"uniqueIndex:idx_results_user_test"`
	Score            float64
	MaxScore         float64
	Percentage       float64
	Completed        bool
	StartedAt        time.Time
	CompletedAt      time.Time
	TimeSpentSeconds int
	Attempts         int `gorm:"default:1"`
}

func (r *TestResult) Passed() bool {
	return r.Completed && r.Percentage >= PassThresholdPercent
}

// TestPrerequisite is a directed edge in the unlock graph: completing
// PrerequisiteID can unlock TestID once the user reaches MinLevelRequired.
// A test may carry several incoming edges.
type TestPrerequisite struct {
	gorm.Model
	TestID           uint `gorm:"index"`
	PrerequisiteID   uint `gorm:"index"`
	Order            int
	MinLevelRequired int  `gorm:"default:1"`
	Active           bool `gorm:"default:true"`
}

// UnlockedTest marks that a user gained access to a test. UnlockedByID is
// the completed test that triggered the unlock.
type UnlockedTest struct {
	gorm.Model
	UserID       uint `gorm:"uniqueIndex:idx_unlocked_user_test"`
	TestID       uint `gorm:"uniqueIndex:idx_unlocked_user_test"`
	UnlockedByID uint
	UnlockedAt   time.Time
	Active       bool `gorm:"default:true"`
}
