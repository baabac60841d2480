// controllers/notification.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/services"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetNotifications(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var notifications []models.Notification
	query := config.DB.Where("user_id = ?", providerID).Order("created_at DESC")
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Limit(100).Find(&notifications).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func MarkNotificationRead(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, providerID).
		Update("is_read", true)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", providerID, false).
		Update("is_read", true).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

func DeleteNotification(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("id = ? AND user_id = ?", id, providerID).
		Delete(&models.Notification{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// StreamNotifications holds the connection open and pushes the user's
// notifications as server-sent events. A heartbeat comment every 30s
// keeps intermediaries from dropping idle connections.
func StreamNotifications(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	events := make(chan models.Notification, 16)
	handler := func(n models.Notification) {
		if n.UserID != providerID {
			return
		}
		select {
		case events <- n:
		default:
			// slow consumer, drop rather than block the bus
		}
	}

	if err := Bus.Subscribe(services.TopicNotificationInsert, handler); err != nil {
		zap.S().Errorw("notification stream subscribe failed", "providerId", providerID, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to open stream")
		return
	}
	defer func() {
		if err := Bus.Unsubscribe(services.TopicNotificationInsert, handler); err != nil {
			zap.S().Warnw("notification stream unsubscribe failed", "providerId", providerID, "err", err)
		}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case n := <-events:
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: notification\ndata: %s\n\n", payload)
			c.Writer.Flush()
		}
	}
}
