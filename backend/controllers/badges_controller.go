package controllers

import (
	"lectoria/backend/config"
	"lectoria/backend/models"
	"lectoria/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BadgesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewBadgesController(db *gorm.DB, cfg *config.Config) *BadgesController {
	return &BadgesController{DB: db, Cfg: cfg}
}

func (bc *BadgesController) GetBadges(c *fiber.Ctx) error {
	var badges []models.Badge
	if err := bc.DB.Preload("Conditions", "active = ?", true).Find(&badges).Error; err != nil {
		return utils.InternalServerError(c, "Could not query badges")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"badges": badges,
	})
}

func (bc *BadgesController) GetMyBadges(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var granted []models.UserBadge
	if err := bc.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("granted_at").
		Find(&granted).Error; err != nil {
		return utils.InternalServerError(c, "Could not query badges")
	}

	result := make([]fiber.Map, 0, len(granted))
	for _, g := range granted {
		result = append(result, fiber.Map{
			"badge_id":    g.BadgeID,
			"name":        g.Badge.Name,
			"description": g.Badge.Description,
			"icon_url":    g.Badge.IconURL,
			"category":    g.Badge.Category,
			"granted_at":  g.GrantedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"badges": result,
	})
}
