// services/scheduler.go
package services

import (
	"fmt"
	"time"

	"betegna-backend/models"
	"betegna-backend/utils"

	cron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Staged previews abandoned without an upload or release get reclaimed
// after this long.
const stagedMediaTTL = 24 * time.Hour

type Scheduler struct {
	db       *gorm.DB
	stage    *MediaStage
	notifier *Notifier
	cron     *cron.Cron
}

func NewScheduler(db *gorm.DB, stage *MediaStage, notifier *Notifier) *Scheduler {
	return &Scheduler{db: db, stage: stage, notifier: notifier, cron: cron.New()}
}

func (s *Scheduler) Start() {
	// Reclaim abandoned staged media nightly
	s.cron.AddFunc("0 3 * * *", func() {
		n := s.stage.Sweep(stagedMediaTTL)
		if n > 0 {
			zap.S().Infow("staged media sweep", "reclaimed", n)
		}
	})

	// Run daily at 9 AM
	s.cron.AddFunc("0 9 * * *", s.SendBookingReminders)

	s.cron.Start()
	zap.S().Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// SendBookingReminders notifies each provider of tomorrow's confirmed
// bookings.
func (s *Scheduler) SendBookingReminders() {
	zap.S().Info("starting booking reminder processing")

	start := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	end := start.AddDate(0, 0, 1)

	var bookings []models.BookedService
	err := s.db.
		Where("scheduled_at >= ? AND scheduled_at < ? AND status = ?", start, end, models.BookingStatusConfirmed).
		Find(&bookings).Error
	if err != nil {
		zap.S().Errorf("failed to fetch bookings: %v", err)
		return
	}

	for _, booking := range bookings {
		var provider models.Provider
		if err := s.db.First(&provider, "id = ?", booking.ProviderID).Error; err != nil {
			zap.S().Errorw("provider lookup failed", "provider", booking.ProviderID, "err", err)
			continue
		}

		message := fmt.Sprintf("Reminder: %s at %s tomorrow",
			booking.ServiceName, booking.ScheduledAt.Format("15:04"))
		if _, err := s.notifier.Notify(provider.ID, "Upcoming booking", message, "booking"); err != nil {
			zap.S().Errorw("reminder notification failed", "provider", provider.ID, "err", err)
		}
		if provider.SMSNotifications && provider.Phone != "" {
			if err := s.notifier.SendSMS(provider.Phone, message); err != nil {
				zap.S().Errorw("reminder SMS failed", "provider", provider.ID, "err", err)
			}
		}
	}

	zap.S().Info("booking reminder processing completed")
}
