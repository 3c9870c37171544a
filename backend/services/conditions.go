package services

import (
	"lectoria/backend/models"

	"gorm.io/gorm"
)

// ConditionKind is the closed set of badge condition types.
type ConditionKind string

const (
	ConditionTestsCompleted ConditionKind = "tests_completados"
	ConditionMinScore       ConditionKind = "puntuacion_minima"
	ConditionGamesCompleted ConditionKind = "juegos_completados"
	ConditionLevelReached   ConditionKind = "nivel_alcanzado"

	// Declared in the taxonomy but not evaluated yet. Badges using them
	// can never be granted automatically until an evaluator is wired.
	ConditionReadingsCompleted ConditionKind = "lecturas_completadas"
	ConditionStreakDays        ConditionKind = "racha_dias"
	ConditionTotalTime         ConditionKind = "tiempo_total"
)

type conditionFunc func(tx *gorm.DB, userID uint, required float64) (bool, error)

var conditionFuncs = map[ConditionKind]conditionFunc{
	ConditionTestsCompleted: testsCompletedAtLeast,
	ConditionMinScore:       bestScoreAtLeast,
	ConditionGamesCompleted: gamesCompletedAtLeast,
	ConditionLevelReached:   levelAtLeast,
}

// EvaluateCondition checks one badge condition for a user. Unknown and
// unimplemented kinds fail closed: they never satisfy a badge.
func EvaluateCondition(tx *gorm.DB, userID uint, kind ConditionKind, required float64) (bool, error) {
	eval, ok := conditionFuncs[kind]
	if !ok {
		return false, nil
	}
	return eval(tx, userID, required)
}

func testsCompletedAtLeast(tx *gorm.DB, userID uint, required float64) (bool, error) {
	var count int64
	err := tx.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ? AND percentage >= ?", userID, true, models.PassThresholdPercent).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return float64(count) >= required, nil
}

func bestScoreAtLeast(tx *gorm.DB, userID uint, required float64) (bool, error) {
	var best float64
	err := tx.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Select("COALESCE(MAX(percentage), 0)").
		Scan(&best).Error
	if err != nil {
		return false, err
	}
	return best >= required, nil
}

func gamesCompletedAtLeast(tx *gorm.DB, userID uint, required float64) (bool, error) {
	var count int64
	err := tx.Model(&models.GameAssignment{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return float64(count) >= required, nil
}

func levelAtLeast(tx *gorm.DB, userID uint, required float64) (bool, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return false, err
	}
	return float64(user.CurrentLevel) >= required, nil
}
