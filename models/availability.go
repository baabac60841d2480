package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProviderAvailabilityWeekly struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_provider_weekday,priority:1"`

	Weekday   int    `gorm:"not null;uniqueIndex:idx_provider_weekday,priority:2"` // 0=Sunday
	StartTime string `gorm:"type:varchar(5);default:'09:00'"`
	EndTime   string `gorm:"type:varchar(5);default:'18:00'"`
	IsClosed  bool   `gorm:"default:false"`
}

func (ProviderAvailabilityWeekly) TableName() string {
	return "provider_availability_weekly"
}

func (a *ProviderAvailabilityWeekly) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

type ProviderBlockedDate struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`

	Date   time.Time `gorm:"type:date;not null"`
	Reason string

	gorm.Model
}

func (ProviderBlockedDate) TableName() string {
	return "provider_blocked_dates"
}

func (d *ProviderBlockedDate) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
