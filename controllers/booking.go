package controllers

import (
	"errors"
	"net/http"
	"time"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	ServiceID   string    `json:"serviceId" binding:"required"`
	CustomerID  string    `json:"customerId" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Notes       string    `json:"notes"`
}

type UpdateBookingInput struct {
	ScheduledAt *time.Time `json:"scheduledAt"`
	Status      *string    `json:"status"`
	Notes       *string    `json:"notes"`
}

var bookingStatuses = map[string]bool{
	models.BookingStatusPending:   true,
	models.BookingStatusConfirmed: true,
	models.BookingStatusCompleted: true,
	models.BookingStatusCancelled: true,
}

// CreateBooking books a service for a customer. The service name and
// price are snapshotted onto the booking row. The booking insert and the
// customer counters update are two sequential writes with no rollback on
// partial failure.
func CreateBooking(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	serviceID, err := uuid.Parse(input.ServiceID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}
	customerID, err := uuid.Parse(input.CustomerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var service models.Service
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, serviceID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var customer models.Customer
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	booking := models.BookedService{
		ProviderID:  providerID,
		ServiceID:   serviceID,
		CustomerID:  customerID,
		ServiceName: service.Name,
		ScheduledAt: input.ScheduledAt,
		Price:       service.Price - service.Discount,
		Notes:       input.Notes,
	}

	if err := config.DB.Create(&booking).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	// Second write; a failure here leaves the booking in place
	now := time.Now()
	if err := config.DB.Model(&customer).Updates(map[string]interface{}{
		"total_bookings": gorm.Expr("total_bookings + 1"),
		"last_booking":   &now,
	}).Error; err != nil {
		zap.S().Errorw("customer counters update failed", "customer", customerID, "err", err)
	}

	var provider models.Provider
	if err := config.DB.First(&provider, "id = ?", providerID).Error; err == nil && Notifier != nil {
		Notifier.BookingCreated(&provider, &booking, customer.Name)
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBookings retrieves bookings for the provider, optionally by status
func GetBookings(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	query := config.DB.Where("provider_id = ?", providerID)
	if status := c.Query("status"); status != "" {
		if !bookingStatuses[status] {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var bookings []models.BookedService
	if err := query.Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking retrieves a specific booking by ID
func GetBooking(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var booking models.BookedService
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, bookingID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdateBooking reschedules or transitions a booking
func UpdateBooking(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Status != nil && !bookingStatuses[*input.Status] {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid booking status")
		return
	}

	var booking models.BookedService
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, bookingID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	fields := map[string]interface{}{}
	if input.ScheduledAt != nil && !input.ScheduledAt.Equal(booking.ScheduledAt) {
		fields["scheduled_at"] = *input.ScheduledAt
	}
	if input.Status != nil && *input.Status != booking.Status {
		fields["status"] = *input.Status
	}
	if input.Notes != nil && *input.Notes != booking.Notes {
		fields["notes"] = *input.Notes
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, booking)
		return
	}

	if err := config.DB.Model(&booking).Updates(fields).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a booking
func DeleteBooking(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerID, bookingID).
		Delete(&models.BookedService{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete booking")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}
