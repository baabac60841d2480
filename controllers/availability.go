package controllers

import (
	"net/http"
	"time"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type WeeklySlotInput struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsClosed  bool   `json:"isClosed"`
}

type BlockDateInput struct {
	Date   string `json:"date" binding:"required"` // YYYY-MM-DD
	Reason string `json:"reason"`
}

// GetWeeklyAvailability returns the provider's weekly schedule
func GetWeeklyAvailability(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var slots []models.ProviderAvailabilityWeekly
	if err := config.DB.Where("provider_id = ?", providerID).
		Order("weekday").Find(&slots).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve availability")
		return
	}

	c.JSON(http.StatusOK, slots)
}

// UpdateWeeklyAvailability upserts the submitted weekday slots
func UpdateWeeklyAvailability(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input []WeeklySlotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	for _, slot := range input {
		if !slot.IsClosed {
			if !utils.ValidateTimeOfDay(slot.StartTime) || !utils.ValidateTimeOfDay(slot.EndTime) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid time format, want HH:MM")
				return
			}
			if slot.StartTime >= slot.EndTime {
				utils.RespondWithError(c, http.StatusBadRequest, "Start time must be before end time")
				return
			}
		}
	}

	for _, slot := range input {
		row := models.ProviderAvailabilityWeekly{
			ProviderID: providerID,
			Weekday:    slot.Weekday,
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			IsClosed:   slot.IsClosed,
		}
		err := config.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}, {Name: "weekday"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "is_closed"}),
		}).Create(&row).Error
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update availability")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability updated"})
}

// GetBlockedDates lists upcoming blocked dates
func GetBlockedDates(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var dates []models.ProviderBlockedDate
	if err := config.DB.Where("provider_id = ? AND date >= ?", providerID, utils.BeginningOfDay(time.Now())).
		Order("date").Find(&dates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve blocked dates")
		return
	}

	c.JSON(http.StatusOK, dates)
}

// BlockDate marks one date unavailable
func BlockDate(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input BlockDateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, want YYYY-MM-DD")
		return
	}

	blocked := models.ProviderBlockedDate{
		ProviderID: providerID,
		Date:       date,
		Reason:     input.Reason,
	}
	if err := config.DB.Create(&blocked).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to block date")
		return
	}

	c.JSON(http.StatusCreated, blocked)
}

// UnblockDate removes a blocked date
func UnblockDate(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	dateID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerID, dateID).
		Delete(&models.ProviderBlockedDate{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unblock date")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Blocked date not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Date unblocked"})
}
