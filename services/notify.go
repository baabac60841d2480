// services/notify.go
package services

import (
	"fmt"
	"os"

	"betegna-backend/models"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier persists notifications, fans them out on the bus for realtime
// subscribers, and optionally mirrors them over SMS.
type Notifier struct {
	db        *gorm.DB
	bus       evbus.Bus
	client    *twilio.RestClient
	fromPhone string
}

func NewNotifier(db *gorm.DB, bus evbus.Bus) *Notifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &Notifier{
		db:  db,
		bus: bus,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		fromPhone: os.Getenv("TWILIO_FROM_PHONE"),
	}
}

// Notify inserts a notification row and publishes it for streaming
// clients of that user.
func (n *Notifier) Notify(userID uuid.UUID, title, message, ntype string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    ntype,
	}
	if err := n.db.Create(notification).Error; err != nil {
		return nil, err
	}

	if n.bus != nil {
		n.bus.Publish(TopicNotificationInsert, *notification)
	}
	return notification, nil
}

// SendSMS delivers one message through Twilio.
func (n *Notifier) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.fromPhone)
	params.SetBody(body)

	_, err := n.client.Api.CreateMessage(params)
	return err
}

// BookingCreated notifies the provider about a new booking; SMS is sent
// only when the provider opted in.
func (n *Notifier) BookingCreated(provider *models.Provider, booking *models.BookedService, customerName string) {
	title := "New booking"
	message := fmt.Sprintf("%s booked %s for %s",
		customerName, booking.ServiceName, booking.ScheduledAt.Format("Jan 2 15:04"))

	if _, err := n.Notify(provider.ID, title, message, "booking"); err != nil {
		zap.S().Errorw("booking notification failed", "provider", provider.ID, "err", err)
	}

	if provider.SMSNotifications && provider.Phone != "" {
		if err := n.SendSMS(provider.Phone, message); err != nil {
			zap.S().Errorw("booking SMS failed", "provider", provider.ID, "err", err)
		}
	}
}

// LeadCreated notifies the provider about a new lead.
func (n *Notifier) LeadCreated(provider *models.Provider, lead *models.Lead) {
	title := "New lead"
	message := fmt.Sprintf("%s is interested: %s", lead.CustomerName, lead.Message)

	if _, err := n.Notify(provider.ID, title, message, "lead"); err != nil {
		zap.S().Errorw("lead notification failed", "provider", provider.ID, "err", err)
	}

	if provider.SMSNotifications && provider.Phone != "" {
		if err := n.SendSMS(provider.Phone, message); err != nil {
			zap.S().Errorw("lead SMS failed", "provider", provider.ID, "err", err)
		}
	}
}
