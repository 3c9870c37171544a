package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Description   string
	GameURL       string
	Category      string
	RequiredLevel int `gorm:"default:1"`
}

type GameAssignment struct {
	gorm.Model
	UserID        uint `gorm:"index"`
	GameID        uint `gorm:"index"`
	AssignedLevel int  `gorm:"default:1"`
	Completed     bool `gorm:"default:false"`
	AssignedAt    time.Time
	CompletedAt   *time.Time
}
