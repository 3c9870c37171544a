package models

import "gorm.io/gorm"

type ReadingTest struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string
	Level       int  `gorm:"default:1"`
	Diagnostic  bool `gorm:"default:false"`
}
