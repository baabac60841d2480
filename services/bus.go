// services/bus.go
package services

import (
	"github.com/google/uuid"
)

// Event topics. Entity mutations publish exactly one event after the
// relational write succeeds; the list cache and the notification fanout
// subscribe. This replaces ad hoc cross-view patching with a single,
// explicit propagation path.
const (
	TopicServiceCreated  = "service.created"
	TopicServiceUpdated  = "service.updated"
	TopicServiceDeleted  = "service.deleted"
	TopicMenuItemCreated = "menu_item.created"
	TopicMenuItemUpdated = "menu_item.updated"
	TopicMenuItemDeleted = "menu_item.deleted"
	TopicCustomerCreated = "customer.created"
	TopicCustomerUpdated = "customer.updated"
	TopicCustomerDeleted = "customer.deleted"
	TopicHandymanCreated = "handyman.created"
	TopicHandymanUpdated = "handyman.updated"
	TopicHandymanDeleted = "handyman.deleted"

	TopicNotificationInsert = "notification.insert"
)

// EntityEvent describes one committed mutation. Fields holds only the
// columns that changed (update events); it is nil for create and delete.
type EntityEvent struct {
	ProviderID uuid.UUID
	ID         uuid.UUID
	Fields     map[string]interface{}
}
