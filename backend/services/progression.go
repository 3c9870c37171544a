package services

import (
	"errors"
	"log"
	"time"

	"lectoria/backend/models"

	"gorm.io/gorm"
)

const (
	// MaxLevel caps automatic level progression.
	MaxLevel = 10
	// TestsPerLevel is how many passed tests it takes to gain a level.
	TestsPerLevel = 3
)

// ErrProgressionFailed is the single error the engine surfaces when any
// phase fails; the whole transaction is rolled back, so no partial
// unlocks, grants or level changes survive.
var ErrProgressionFailed = errors.New("could not process progression")

// ProgressionService runs the automatic progression engine. It holds no
// state between calls: every invocation is one transaction over the store.
type ProgressionService struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProgressionService(db *gorm.DB, logger *log.Logger) *ProgressionService {
	return &ProgressionService{DB: db, Logger: logger}
}

// ProcessTestCompletion runs the three progression phases for an already
// persisted best-attempt result: unlock downstream tests, grant badges
// whose conditions now hold, recompute the user's level. The phases share
// one transaction. The caller records the TestResult before invoking this.
func (ps *ProgressionService) ProcessTestCompletion(userID, testID uint, result models.TestResult) (*ProgressionOutcome, error) {
	outcome := newProgressionOutcome()

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		if err := ps.unlockTests(tx, userID, testID, result, outcome); err != nil {
			return err
		}
		if err := ps.grantBadges(tx, userID, outcome); err != nil {
			return err
		}
		return ps.updateUserLevel(tx, userID)
	})
	if err != nil {
		ps.Logger.Printf("progression failed for user %d, test %d: %v", userID, testID, err)
		return nil, ErrProgressionFailed
	}

	outcome.sortUnlocked()
	return outcome, nil
}

// unlockTests walks the active prerequisite edges off the completed test
// and inserts an UnlockedTest row for every downstream test the user now
// qualifies for. Runs only when the result passed. Each edge is handled
// independently: the existence check plus the unique index on
// (user_id, test_id) make the insert idempotent, so edge order and
// concurrent completions cannot change the final state.
func (ps *ProgressionService) unlockTests(tx *gorm.DB, userID, completedTestID uint, result models.TestResult, outcome *ProgressionOutcome) error {
	if !result.Passed() {
		return nil
	}

	var edges []models.TestPrerequisite
	if err := tx.Where("prerequisite_id = ? AND active = ?", completedTestID, true).Find(&edges).Error; err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return err
	}

	for _, edge := range edges {
		if user.CurrentLevel < edge.MinLevelRequired {
			continue
		}

		var already int64
		if err := tx.Model(&models.UnlockedTest{}).
			Where("user_id = ? AND test_id = ?", userID, edge.TestID).
			Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			continue
		}

		unlocked := models.UnlockedTest{
			UserID:       userID,
			TestID:       edge.TestID,
			UnlockedByID: completedTestID,
			UnlockedAt:   time.Now(),
			Active:       true,
		}
		if err := tx.Create(&unlocked).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent completion already unlocked this test.
				continue
			}
			return err
		}

		var test models.ReadingTest
		if err := tx.First(&test, edge.TestID).Error; err != nil {
			return err
		}
		outcome.addUnlockedTest(unlocked, test)
	}

	return nil
}

// grantBadges evaluates every badge the user does not hold yet. All active
// conditions of a badge must hold (AND semantics); evaluation stops at the
// first failing condition. Grants are inserted immediately, not batched.
func (ps *ProgressionService) grantBadges(tx *gorm.DB, userID uint, outcome *ProgressionOutcome) error {
	var badges []models.Badge
	if err := tx.Preload("Conditions", "active = ?", true).Find(&badges).Error; err != nil {
		return err
	}

	for _, badge := range badges {
		if len(badge.Conditions) == 0 {
			continue
		}

		var held int64
		if err := tx.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", userID, badge.ID).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			continue
		}

		met := true
		for _, cond := range badge.Conditions {
			ok, err := EvaluateCondition(tx, userID, ConditionKind(cond.ConditionType), cond.RequiredValue)
			if err != nil {
				return err
			}
			if !ok {
				met = false
				break
			}
		}
		if !met {
			continue
		}

		grant := models.UserBadge{
			UserID:    userID,
			BadgeID:   badge.ID,
			GrantedAt: time.Now(),
		}
		if err := tx.Create(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Granted by a concurrent invocation.
				continue
			}
			return err
		}

		ps.Logger.Printf("badge %q granted to user %d", badge.Name, userID)
		outcome.addGrantedBadge(grant, badge)
	}

	return nil
}

// updateUserLevel recomputes the level from the passed-test count:
// level = min(MaxLevel, passed/TestsPerLevel + 1). The update is
// conditional on current_level < computed, so levels only ever go up and
// two racing invocations cannot overwrite a higher level with a lower one.
func (ps *ProgressionService) updateUserLevel(tx *gorm.DB, userID uint) error {
	var passed int64
	if err := tx.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ? AND percentage >= ?", userID, true, models.PassThresholdPercent).
		Count(&passed).Error; err != nil {
		return err
	}

	newLevel := int(passed)/TestsPerLevel + 1
	if newLevel > MaxLevel {
		newLevel = MaxLevel
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND current_level < ?", userID, newLevel).
		Update("current_level", newLevel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		ps.Logger.Printf("user %d reached level %d", userID, newLevel)
	}

	return nil
}
