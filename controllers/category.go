package controllers

import (
	"net/http"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetCategories returns the category lookup table
func GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Find(&categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetSubCategories returns the sub-category lookup table, optionally
// filtered by category
func GetSubCategories(c *gin.Context) {
	query := config.DB
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var subCategories []models.SubCategory
	if err := query.Find(&subCategories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve sub-categories")
		return
	}

	c.JSON(http.StatusOK, subCategories)
}
