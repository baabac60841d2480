package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"betegna-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Provider struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null"`
	Phone    string

	BusinessName string `gorm:"not null"`
	Address      string
	ProfileImage string
	BannerImage  string
	WorkingHours JSONB `gorm:"type:jsonb;default:'{}'"`

	SMSNotifications  bool `gorm:"default:false"`
	PushNotifications bool `gorm:"default:true"`

	Services  []Service  `gorm:"foreignKey:ProviderID"`
	MenuItems []MenuItem `gorm:"foreignKey:ProviderID"`
	Customers []Customer `gorm:"foreignKey:ProviderID"`
	Handymen  []HandyMan `gorm:"foreignKey:ProviderID"`

	LastLogin *time.Time
	IsActive  bool `gorm:"default:true"`

	gorm.Model
}

// Initialize UUID and hash the password before creating
func (p *Provider) BeforeCreate(tx *gorm.DB) (err error) {
	p.ID = uuid.New()
	hashed, err := utils.HashPassword(p.Password)
	if err != nil {
		return err
	}
	p.Password = hashed
	return
}

// Custom JSONB type for working hours and other schemaless columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &j)
}

// StringList stores an ordered list of URLs as jsonb. Index 0 is the cover.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(s))
}

func (s *StringList) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, s)
}
