package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HandyMan struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name         string `gorm:"not null"`
	Phone        string `gorm:"not null"`
	Email        string
	Specialty    string
	ProfileImage string
	IsActive     bool `gorm:"default:true"`

	gorm.Model
}

func (HandyMan) TableName() string {
	return "handyman"
}
