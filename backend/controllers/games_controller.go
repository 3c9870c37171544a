package controllers

import (
	"errors"
	"strconv"
	"time"

	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GamesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGamesController(db *gorm.DB, cfg *config.Config) *GamesController {
	return &GamesController{DB: db, Cfg: cfg}
}

func (gc *GamesController) GetGames(c *fiber.Ctx) error {
	var games []models.Game
	if err := gc.DB.Order("required_level, id").Find(&games).Error; err != nil {
		return utils.InternalServerError(c, "Could not query games")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"games": games,
	})
}

// AssignGame lets the user add a game to their own list.
func (gc *GamesController) AssignGame(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	gameID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid game ID")
	}

	var game models.Game
	if err := gc.DB.First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Game not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var already int64
	gc.DB.Model(&models.GameAssignment{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Count(&already)
	if already > 0 {
		return utils.BadRequest(c, "Game already assigned")
	}

	assignment := models.GameAssignment{
		UserID:        userID,
		GameID:        uint(gameID),
		AssignedLevel: 1,
		Completed:     false,
		AssignedAt:    time.Now(),
	}
	if err := gc.DB.Create(&assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not assign game")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":    "Game assigned",
		"assignment": assignment,
	})
}

// CompleteGame marks an assigned game as finished. Completed assignments
// feed the juegos_completados badge condition.
func (gc *GamesController) CompleteGame(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, gc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	gameID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid game ID")
	}

	var assignment models.GameAssignment
	if err := gc.DB.Where("user_id = ? AND game_id = ?", userID, gameID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Game is not assigned to this user")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if !assignment.Completed {
		now := time.Now()
		assignment.Completed = true
		assignment.CompletedAt = &now
		if err := gc.DB.Save(&assignment).Error; err != nil {
			return utils.InternalServerError(c, "Could not update assignment")
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":    "Game completed",
		"assignment": assignment,
	})
}
