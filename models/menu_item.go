package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	// Percentage discount, 0 <= DiscountPercent <= 99
	DiscountPercent float64    `gorm:"type:decimal(5,2);default:0.0"`
	CategoryID      *uuid.UUID `gorm:"type:uuid;index"`

	// Ordered image URLs, index 0 is the cover
	MenuImage StringList `gorm:"type:jsonb;default:'[]'"`

	IsAvailable bool `gorm:"default:true"`

	gorm.Model
}
