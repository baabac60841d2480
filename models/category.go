package models

import (
	"github.com/google/uuid"
)

// Category and SubCategory are read-only lookup tables. Entities reference
// them by id and display names are joined in the cache layer, not in SQL.
type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name string    `gorm:"not null;uniqueIndex"`
	Icon string

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID"`
}

type SubCategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null"`
}

func (SubCategory) TableName() string {
	return "sub_category"
}

func (Category) TableName() string {
	return "category"
}
