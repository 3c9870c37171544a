package routes

import (
	"log"

	"lectoria/backend/config"
	"lectoria/backend/controllers"
	"lectoria/backend/middleware"
	"lectoria/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progression routes
	progressionService := services.NewProgressionService(db, logger)
	progressionController := controllers.NewProgressionController(db, cfg, progressionService)
	progression := app.Group("/api/progression", authMiddleware)
	progression.Post("/tests/complete", progressionController.CompleteTest)
	progression.Get("/tests/available", progressionController.GetAvailableTests)
	progression.Get("/overview", progressionController.GetOverview)

	// Badge routes
	badgesController := controllers.NewBadgesController(db, cfg)
	badges := app.Group("/api/badges", authMiddleware)
	badges.Get("/", badgesController.GetBadges)
	badges.Get("/mine", badgesController.GetMyBadges)

	// Game routes
	gamesController := controllers.NewGamesController(db, cfg)
	games := app.Group("/api/games", authMiddleware)
	games.Get("/", gamesController.GetGames)
	games.Post("/:id/assign", gamesController.AssignGame)
	games.Post("/:id/complete", gamesController.CompleteGame)
}
