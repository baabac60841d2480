package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	Message  string `gorm:"type:text;not null"`
	Rating   int    `gorm:"default:0"` // 1-5, 0 when not rated
	MediaURL string

	gorm.Model
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
