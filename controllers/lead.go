package controllers

import (
	"errors"
	"net/http"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateLeadInput struct {
	ProviderID   string `json:"providerId" binding:"required"`
	CustomerName string `json:"customerName" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	ServiceID    string `json:"serviceId"`
	Message      string `json:"message"`
	Source       string `json:"source"`
}

type UpdateLeadInput struct {
	Status *string `json:"status"`
}

var leadStatuses = map[string]bool{
	models.LeadStatusNew:       true,
	models.LeadStatusContacted: true,
	models.LeadStatusConverted: true,
	models.LeadStatusClosed:    true,
}

// CreateLead records an inbound inquiry. The endpoint is public; the
// provider is identified by id in the payload.
func CreateLead(c *gin.Context) {
	var input CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	providerID, err := uuid.Parse(input.ProviderID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid provider ID format")
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	var provider models.Provider
	if err := config.DB.First(&provider, "id = ?", providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Provider not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	lead := models.Lead{
		ProviderID:   providerID,
		CustomerName: input.CustomerName,
		Phone:        input.Phone,
		Email:        input.Email,
		Message:      input.Message,
		Source:       input.Source,
	}
	if input.ServiceID != "" {
		serviceID, err := uuid.Parse(input.ServiceID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return
		}
		lead.ServiceID = &serviceID
	}

	if err := config.DB.Create(&lead).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create lead")
		return
	}

	if Notifier != nil {
		Notifier.LeadCreated(&provider, &lead)
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLeads retrieves all leads for the provider, optionally by status
func GetLeads(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	query := config.DB.Where("provider_id = ?", providerID)
	if status := c.Query("status"); status != "" {
		if !leadStatuses[status] {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve leads")
		return
	}

	c.JSON(http.StatusOK, leads)
}

// UpdateLead transitions a lead's status
func UpdateLead(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	leadID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Status == nil || !leadStatuses[*input.Status] {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead status")
		return
	}

	var lead models.Lead
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, leadID).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Lead not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if lead.Status == *input.Status {
		c.JSON(http.StatusOK, lead)
		return
	}

	if err := config.DB.Model(&lead).Update("status", *input.Status).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead removes a lead
func DeleteLead(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	leadID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerID, leadID).
		Delete(&models.Lead{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete lead")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Lead not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}
