package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusClosed    = "closed"
)

type Lead struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerName string `gorm:"not null"`
	Phone        string `gorm:"not null"`
	Email        string
	ServiceID    *uuid.UUID `gorm:"type:uuid;index"`
	Message      string     `gorm:"type:text"`
	Source       string     `gorm:"type:varchar(30)"` // web, referral, phone
	Status       string     `gorm:"type:varchar(20);default:'new'"`

	gorm.Model
}

func (l *Lead) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	return
}
