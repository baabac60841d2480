// controllers/feedback.go
package controllers

import (
	"net/http"
	"strconv"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/services"
	"betegna-backend/storage"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedbackController struct {
	Uploader services.Uploader
}

func NewFeedbackController(uploader services.Uploader) *FeedbackController {
	return &FeedbackController{Uploader: uploader}
}

// CreateFeedback takes a multipart form: message (required), rating
// (optional, 1-5) and an optional media file that lands in the
// provider's feedback folder.
func (fc *FeedbackController) CreateFeedback(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	message := c.PostForm("message")
	if message == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Message is required")
		return
	}

	rating := 0
	if raw := c.PostForm("rating"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 5 {
			utils.RespondWithError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
			return
		}
		rating = parsed
	}

	mediaURL := ""
	file, hasFile, err := readMultipartFile(c, "media")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read media file")
		return
	}
	if hasFile {
		urls, err := fc.Uploader.Upload(c.Request.Context(), []storage.File{file}, "feedback/"+providerID.String())
		if err != nil {
			zap.S().Errorw("feedback media upload failed", "providerId", providerID, "error", err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to upload media")
			return
		}
		mediaURL = urls[0]
	}

	feedback := models.Feedback{
		ProviderID: providerID,
		Message:    message,
		Rating:     rating,
		MediaURL:   mediaURL,
	}

	if err := config.DB.Create(&feedback).Error; err != nil {
		zap.S().Errorw("failed to create feedback", "providerId", providerID, "error", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var feedback []models.Feedback
	if err := config.DB.Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&feedback).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}

	c.JSON(http.StatusOK, feedback)
}
