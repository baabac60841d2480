package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Title   string `gorm:"not null"`
	Message string `gorm:"type:text"`
	Type    string `gorm:"type:varchar(30)"` // booking, lead, feedback, system
	IsRead  bool   `gorm:"default:false"`

	gorm.Model
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
