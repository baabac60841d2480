// controllers/profile.go
package controllers

import (
	"errors"
	"net/http"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/services"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileController struct {
	Pipeline *services.Pipeline
}

func NewProfileController(pipeline *services.Pipeline) *ProfileController {
	return &ProfileController{Pipeline: pipeline}
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var provider models.Provider
	if err := config.DB.First(&provider, "id = ?", providerID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Provider not found")
		return
	}

	c.JSON(http.StatusOK, provider)
}

type ProfileUpdateInput struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	BusinessName *string `json:"businessName"`
	Address      *string `json:"address"`

	// Staged URI or remote URL; nil leaves the image alone.
	ProfileImage *services.MediaAsset `json:"profileImage"`
	BannerImage  *services.MediaAsset `json:"bannerImage"`
}

// UpdateProfile writes only the fields that actually changed against
// the stored row. Image fields arrive as staged URIs (already cropped
// to the cover or banner shape) and are resolved to remote URLs before
// the write.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var provider models.Provider
	if err := config.DB.First(&provider, "id = ?", providerID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Provider not found")
		return
	}

	fields := map[string]interface{}{}
	if input.Name != nil && *input.Name != provider.Name {
		if *input.Name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		fields["name"] = *input.Name
	}
	if input.Phone != nil && *input.Phone != provider.Phone {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		fields["phone"] = *input.Phone
	}
	if input.BusinessName != nil && *input.BusinessName != provider.BusinessName {
		if *input.BusinessName == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Business name cannot be empty")
			return
		}
		fields["business_name"] = *input.BusinessName
	}
	if input.Address != nil && *input.Address != provider.Address {
		fields["address"] = *input.Address
	}

	var imageAssets []services.MediaAsset
	if input.ProfileImage != nil {
		url, err := pc.resolveImage(c, *input.ProfileImage, providerID.String())
		if err != nil {
			return // response already written
		}
		imageAssets = append(imageAssets, *input.ProfileImage)
		if url != provider.ProfileImage {
			fields["profile_image"] = url
		}
	}
	if input.BannerImage != nil {
		url, err := pc.resolveImage(c, *input.BannerImage, providerID.String())
		if err != nil {
			return
		}
		imageAssets = append(imageAssets, *input.BannerImage)
		if url != provider.BannerImage {
			fields["banner_image"] = url
		}
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, provider)
		return
	}

	if err := config.DB.Model(&provider).Updates(fields).Error; err != nil {
		zap.S().Errorw("profile update failed", "providerId", providerID, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	// Staged bytes are kept until the row is written so a failed update
	// can be resubmitted.
	pc.Pipeline.ReleaseStaged(imageAssets)

	c.JSON(http.StatusOK, provider)
}

func (pc *ProfileController) resolveImage(c *gin.Context, asset services.MediaAsset, providerID string) (string, error) {
	urls, err := pc.Pipeline.ResolveMedia(c.Request.Context(), []services.MediaAsset{asset}, "profiles/"+providerID)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		} else {
			zap.S().Errorw("profile image resolve failed", "providerId", providerID, "err", err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to upload image")
		}
		return "", err
	}
	return urls[0], nil
}

type WorkingHoursInput struct {
	WorkingHours models.JSONB `json:"workingHours" binding:"required"`
}

func (pc *ProfileController) UpdateWorkingHours(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input WorkingHoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := config.DB.Model(&models.Provider{}).
		Where("id = ?", providerID).
		Update("working_hours", input.WorkingHours).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Working hours updated", "workingHours": input.WorkingHours})
}

type NotificationSettingsInput struct {
	SMSNotifications  *bool `json:"smsNotifications"`
	PushNotifications *bool `json:"pushNotifications"`
}

func (pc *ProfileController) UpdateNotificationSettings(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var input NotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if input.SMSNotifications != nil {
		fields["sms_notifications"] = *input.SMSNotifications
	}
	if input.PushNotifications != nil {
		fields["push_notifications"] = *input.PushNotifications
	}
	if len(fields) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No settings provided")
		return
	}

	if err := config.DB.Model(&models.Provider{}).
		Where("id = ?", providerID).
		Updates(fields).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}
