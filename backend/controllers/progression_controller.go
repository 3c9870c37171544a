package controllers

import (
	"errors"
	"time"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/services"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressionController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Progression *services.ProgressionService
}

func NewProgressionController(db *gorm.DB, cfg *config.Config, progression *services.ProgressionService) *ProgressionController {
	return &ProgressionController{DB: db, Cfg: cfg, Progression: progression}
}

type CompleteTestRequest struct {
	TestID           uint    `json:"test_id"`
	Score            float64 `json:"score"`
	MaxScore         float64 `json:"max_score"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// CompleteTest godoc
// @Summary Record a test completion
// @Description Saves the attempt and runs automatic progression: test unlocks, badge grants, level recalculation
// @Tags progression
// @Accept json
// @Produce json
// @Param input body CompleteTestRequest true "Completion data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progression/tests/complete [post]
func (pc *ProgressionController) CompleteTest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input CompleteTestRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Score < 0 || input.MaxScore <= 0 || input.Score > input.MaxScore || input.TimeSpentSeconds < 0 {
		return utils.BadRequest(c, "Invalid score values")
	}

	var test models.ReadingTest
	if err := pc.DB.First(&test, input.TestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	canAccess, err := pc.Progression.CanAccessTest(userID, input.TestID)
	if err != nil {
		return utils.InternalServerError(c, "Could not check test access")
	}
	if !canAccess {
		return utils.Forbidden(c, "Test is locked for this user")
	}

	result, err := pc.recordAttempt(userID, input)
	if err != nil {
		return utils.InternalServerError(c, "Could not save test result")
	}

	outcome, err := pc.Progression.ProcessTestCompletion(userID, input.TestID, *result)
	if err != nil {
		return utils.InternalServerError(c, "Could not process progression")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"result":      result,
		"progression": outcome,
	})
}

// recordAttempt keeps one best-attempt row per (user, test): the stored
// scores are replaced only when the new percentage beats them, attempts
// always increments.
func (pc *ProgressionController) recordAttempt(userID uint, input CompleteTestRequest) (*models.TestResult, error) {
	percentage := input.Score / input.MaxScore * 100
	now := time.Now()

	var result models.TestResult
	err := pc.DB.Where("user_id = ? AND test_id = ?", userID, input.TestID).First(&result).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		result = models.TestResult{
			UserID:           userID,
			TestID:           input.TestID,
			Score:            input.Score,
			MaxScore:         input.MaxScore,
			Percentage:       percentage,
			Completed:        true,
			StartedAt:        now,
			CompletedAt:      now,
			TimeSpentSeconds: input.TimeSpentSeconds,
			Attempts:         1,
		}
		if err := pc.DB.Create(&result).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		result.Attempts++
		if percentage > result.Percentage {
			result.Score = input.Score
			result.MaxScore = input.MaxScore
			result.Percentage = percentage
			result.CompletedAt = now
			result.TimeSpentSeconds = input.TimeSpentSeconds
		}
		if err := pc.DB.Save(&result).Error; err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (pc *ProgressionController) GetAvailableTests(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	tests, err := pc.Progression.AvailableTests(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query available tests")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, test := range tests {
		entry := fiber.Map{
			"id":          test.ID,
			"title":       test.Title,
			"description": test.Description,
			"level":       test.Level,
			"diagnostic":  test.Diagnostic,
		}

		var res models.TestResult
		if err := pc.DB.Where("user_id = ? AND test_id = ?", userID, test.ID).First(&res).Error; err == nil {
			entry["progress"] = fiber.Map{
				"completed":       res.Completed,
				"best_percentage": res.Percentage,
				"attempts":        res.Attempts,
				"last_attempt":    res.CompletedAt,
			}
		}

		result = append(result, entry)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"tests": result,
	})
}

func (pc *ProgressionController) GetOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := pc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var testsCompleted int64
	pc.DB.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&testsCompleted)

	var testsPassed int64
	pc.DB.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ? AND percentage >= ?", userID, true, models.PassThresholdPercent).
		Count(&testsPassed)

	var avgPercentage float64
	pc.DB.Model(&models.TestResult{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Select("COALESCE(AVG(percentage), 0)").
		Scan(&avgPercentage)

	var badgesHeld int64
	pc.DB.Model(&models.UserBadge{}).Where("user_id = ?", userID).Count(&badgesHeld)

	var gamesCompleted, gamesPending int64
	pc.DB.Model(&models.GameAssignment{}).Where("user_id = ? AND completed = ?", userID, true).Count(&gamesCompleted)
	pc.DB.Model(&models.GameAssignment{}).Where("user_id = ? AND completed = ?", userID, false).Count(&gamesPending)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user": fiber.Map{
			"name":          user.Name,
			"current_level": user.CurrentLevel,
		},
		"tests": fiber.Map{
			"completed":          testsCompleted,
			"passed":             testsPassed,
			"average_percentage": avgPercentage,
		},
		"badges": fiber.Map{
			"held": badgesHeld,
		},
		"games": fiber.Map{
			"completed": gamesCompleted,
			"pending":   gamesPending,
		},
	})
}
