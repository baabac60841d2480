package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProviderID      uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_provider_phone,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name         string `gorm:"not null"`
	Phone        string `gorm:"not null;uniqueIndex:idx_provider_phone,priority:2"`
	Email        string
	Address      string
	ProfileImage string
	Notes        string

	TotalBookings int `gorm:"default:0"`
	LastBooking   *time.Time
	IsActive      bool `gorm:"default:true"`

	Bookings []BookedService `gorm:"foreignKey:CustomerID"`

	gorm.Model
}
