package controllers

import (
	"errors"
	"net/http"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/services"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateHandymanInput struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email"`
	Specialty    string `json:"specialty"`
	ProfileImage string `json:"profileImage"`
}

type UpdateHandymanInput struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Specialty    *string `json:"specialty"`
	ProfileImage *string `json:"profileImage"`
	IsActive     *bool   `json:"isActive"`
}

// CreateHandyman creates a new handyman for the provider
func CreateHandyman(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input CreateHandymanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	handyman := models.HandyMan{
		ID:           uuid.New(),
		ProviderID:   providerID,
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		Specialty:    input.Specialty,
		ProfileImage: input.ProfileImage,
		IsActive:     true,
	}

	if err := config.DB.Create(&handyman).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create handyman")
		return
	}

	publish(services.TopicHandymanCreated, services.EntityEvent{ProviderID: providerID, ID: handyman.ID})
	c.JSON(http.StatusCreated, handyman)
}

// GetHandymen retrieves all handymen for the provider
func GetHandymen(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	handymen, err := Cache.Handymen(providerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve handymen")
		return
	}

	c.JSON(http.StatusOK, handymen)
}

// GetHandyman retrieves a specific handyman by ID
func GetHandyman(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	handymanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var handyman models.HandyMan
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, handymanID).
		First(&handyman).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Handyman not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, handyman)
}

// UpdateHandyman updates an existing handyman, writing changed columns only
func UpdateHandyman(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	handymanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateHandymanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var handyman models.HandyMan
	if err := config.DB.Where("provider_id = ? AND id = ?", providerID, handymanID).
		First(&handyman).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Handyman not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	fields := map[string]interface{}{}
	if input.Name != nil && *input.Name != handyman.Name {
		fields["name"] = *input.Name
	}
	if input.Phone != nil && *input.Phone != handyman.Phone {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		fields["phone"] = *input.Phone
	}
	if input.Email != nil && *input.Email != handyman.Email {
		fields["email"] = *input.Email
	}
	if input.Specialty != nil && *input.Specialty != handyman.Specialty {
		fields["specialty"] = *input.Specialty
	}
	if input.ProfileImage != nil && *input.ProfileImage != handyman.ProfileImage {
		fields["profile_image"] = *input.ProfileImage
	}
	if input.IsActive != nil && *input.IsActive != handyman.IsActive {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, handyman)
		return
	}

	if err := config.DB.Model(&handyman).Updates(fields).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update handyman")
		return
	}

	publish(services.TopicHandymanUpdated, services.EntityEvent{ProviderID: providerID, ID: handymanID, Fields: fields})
	c.JSON(http.StatusOK, handyman)
}

// DeleteHandyman soft deletes a handyman
func DeleteHandyman(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	handymanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerID, handymanID).
		Delete(&models.HandyMan{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete handyman")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Handyman not found")
		return
	}

	publish(services.TopicHandymanDeleted, services.EntityEvent{ProviderID: providerID, ID: handymanID})
	c.JSON(http.StatusOK, gin.H{"message": "Handyman deleted successfully"})
}
