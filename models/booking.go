package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

type BookedService struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceName string    `gorm:"not null"`
	ScheduledAt time.Time `gorm:"not null"`
	Price       float64   `gorm:"type:decimal(10,2);not null"`
	Status      string    `gorm:"type:varchar(20);default:'pending'"`
	Notes       string    `gorm:"type:text"`

	gorm.Model
}

func (BookedService) TableName() string {
	return "booked_service"
}

func (b *BookedService) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return
}
