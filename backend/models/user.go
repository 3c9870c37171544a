package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name          string `gorm:"not null"`
	Email         string `gorm:"unique;not null"`
	PasswordHash  string `gorm:"not null"`
	Role          string `gorm:"default:student"` // student, teacher, admin
	InstitutionID uint
	CurrentLevel  int  `gorm:"default:1"`
	Active        bool `gorm:"default:true"`
}

type Institution struct {
	gorm.Model
	Name    string `gorm:"not null"`
	Address string
	Phone   string
}
