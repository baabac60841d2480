package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	// Absolute discount in currency units, 0 <= Discount <= Price
	Discount      float64    `gorm:"type:decimal(10,2);default:0.0"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index"`
	SubCategoryID *uuid.UUID `gorm:"type:uuid;index"`

	// Ordered image URLs, index 0 is the cover
	ServiceImage StringList `gorm:"type:jsonb;default:'[]'"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}
