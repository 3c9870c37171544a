package services

import (
	"sort"
	"time"

	"lectoria/backend/models"
)

// NewlyUnlockedTest carries the test details the client shows in its
// unlock notification.
type NewlyUnlockedTest struct {
	TestID      uint      `json:"test_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Level       int       `json:"level"`
	UnlockedBy  uint      `json:"unlocked_by"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

type NewlyGrantedBadge struct {
	BadgeID     uint      `json:"badge_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	GrantedAt   time.Time `json:"granted_at"`
}

// ProgressionOutcome lists only the rows inserted by one engine
// invocation, never historical unlocks or grants.
type ProgressionOutcome struct {
	UnlockedTests []NewlyUnlockedTest `json:"newly_unlocked_tests"`
	GrantedBadges []NewlyGrantedBadge `json:"newly_granted_badges"`
}

func newProgressionOutcome() *ProgressionOutcome {
	return &ProgressionOutcome{
		UnlockedTests: []NewlyUnlockedTest{},
		GrantedBadges: []NewlyGrantedBadge{},
	}
}

func (o *ProgressionOutcome) addUnlockedTest(row models.UnlockedTest, test models.ReadingTest) {
	o.UnlockedTests = append(o.UnlockedTests, NewlyUnlockedTest{
		TestID:      test.ID,
		Title:       test.Title,
		Description: test.Description,
		Level:       test.Level,
		UnlockedBy:  row.UnlockedByID,
		UnlockedAt:  row.UnlockedAt,
	})
}

func (o *ProgressionOutcome) addGrantedBadge(row models.UserBadge, badge models.Badge) {
	o.GrantedBadges = append(o.GrantedBadges, NewlyGrantedBadge{
		BadgeID:     badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		IconURL:     badge.IconURL,
		GrantedAt:   row.GrantedAt,
	})
}

// sortUnlocked orders unlocked tests by (level, id). Badges keep their
// grant order.
func (o *ProgressionOutcome) sortUnlocked() {
	sort.SliceStable(o.UnlockedTests, func(i, j int) bool {
		if o.UnlockedTests[i].Level != o.UnlockedTests[j].Level {
			return o.UnlockedTests[i].Level < o.UnlockedTests[j].Level
		}
		return o.UnlockedTests[i].TestID < o.UnlockedTests[j].TestID
	})
}
