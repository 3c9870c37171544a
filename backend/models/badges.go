package models

import (
	"time"

	"gorm.io/gorm"
)

type Badge struct {
	gorm.Model
	Name          string `gorm:"not null"`
	Description   string
	IconURL       string
	Category      string
	RequiredLevel int
	Conditions    []BadgeCondition
}

// BadgeCondition gates a badge grant. All active conditions of a badge
// must hold before it is granted; a badge with no conditions is never
// granted automatically.
type BadgeCondition struct {
	gorm.Model
	BadgeID       uint   `gorm:"index"`
	ConditionType string `gorm:"not null"`
	RequiredValue float64
	Description   string
	Active        bool `gorm:"default:true"`
}

type UserBadge struct {
	gorm.Model
	UserID    uint `gorm:"uniqueIndex:idx_user_badges_user_badge"`
	BadgeID   uint `gorm:"uniqueIndex:idx_user_badges_user_badge"`
	GrantedAt time.Time

	Badge Badge `gorm:"foreignKey:BadgeID"`
}
