package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"betegna-backend/config"
	"betegna-backend/models"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email        string       `json:"email" binding:"required,email"`
	Phone        string       `json:"phone" binding:"required"`
	Name         string       `json:"name" binding:"required"`
	Password     string       `json:"password" binding:"required,min=8"`
	BusinessName string       `json:"businessName" binding:"required"`
	Address      string       `json:"address"`
	WorkingHours models.JSONB `json:"workingHours"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if email or phone already exists
	var existing models.Provider
	result := config.DB.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existing)

	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	provider := models.Provider{
		Email:        input.Email,
		Phone:        input.Phone,
		Name:         input.Name,
		Password:     input.Password, // Will be hashed in BeforeCreate hook
		BusinessName: input.BusinessName,
		Address:      input.Address,
		WorkingHours: input.WorkingHours,
	}

	if provider.WorkingHours == nil {
		provider.WorkingHours = models.JSONB{
			"monday":    map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"tuesday":   map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"wednesday": map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"thursday":  map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"friday":    map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"saturday":  map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
			"sunday":    map[string]interface{}{"open": "10:00", "close": "16:00", "closed": true},
		}
	}

	if err := config.DB.Create(&provider).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create provider")
		return
	}

	token, err := utils.GenerateToken(provider.ID.String(), provider.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setTokenCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":           provider.ID,
			"email":        provider.Email,
			"phone":        provider.Phone,
			"businessName": provider.BusinessName,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)

	var provider models.Provider
	result := config.DB.Where("email = ? OR phone = ?", identifier, identifier).First(&provider)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, provider.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(provider.ID.String(), provider.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(&provider).Update("last_login", &now)

	setTokenCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":           provider.ID,
			"email":        provider.Email,
			"phone":        provider.Phone,
			"businessName": provider.BusinessName,
		},
	})
}

// Logout clears every cached view for the tenant and expires the cookie.
// This is the single teardown entry point for process-wide state.
func Logout(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	if Cache != nil {
		Cache.Reset(providerID)
	}
	c.SetCookie("token", "", -1, "/", "", true, true)

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var provider models.Provider
	if err := config.DB.First(&provider, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":           provider.ID,
			"email":        provider.Email,
			"name":         provider.Name,
			"businessName": provider.BusinessName,
			"profileImage": provider.ProfileImage,
		},
	})
}

func setTokenCookie(c *gin.Context, token string) {
	expiryHours := 24
	maxAge := expiryHours * 3600

	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)
}
