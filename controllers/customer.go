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

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" binding:"required"`
	Phone   string  `json:"phone" binding:"required"`
	Email   *string `json:"email"` // Pointer to allow null
	Address string  `json:"address"`
	Notes   string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// CreateCustomer creates a new customer for the provider
func CreateCustomer(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate phone format
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if phone already exists for this provider
	var existingCustomer models.Customer
	if err := config.DB.Where("provider_id = ? AND phone = ?", providerID, input.Phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	customer := models.Customer{
		ID:              uuid.New(),
		ProviderID:      providerID,
		CreatedByUserID: uuid.Must(uuid.Parse(userID.(string))),
		Name:            input.Name,
		Phone:           input.Phone,
		Address:         input.Address,
		Notes:           input.Notes,
		IsActive:        true,
	}

	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	publish(services.TopicCustomerCreated, services.EntityEvent{ProviderID: providerID, ID: customer.ID})
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves all customers for the provider
func GetCustomers(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	customers, err := Cache.Customers(providerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	customerID, ok := pathUUID(c, "id")
	if !ok {
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

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer. The patch is diffed
// against the freshly fetched row; only changed columns are written.
func UpdateCustomer(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	customerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Retrieve existing customer
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

	fields := map[string]interface{}{}
	if input.Name != nil && *input.Name != customer.Name {
		fields["name"] = *input.Name
	}
	if input.Phone != nil && *input.Phone != customer.Phone {
		// Validate phone format
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}

		// Check if phone is being changed to another existing customer
		var existingCustomer models.Customer
		if err := config.DB.Where("provider_id = ? AND phone = ?", providerID, *input.Phone).
			First(&existingCustomer).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		fields["phone"] = *input.Phone
	}
	if input.Email != nil && *input.Email != customer.Email {
		fields["email"] = *input.Email
	}
	if input.Address != nil && *input.Address != customer.Address {
		fields["address"] = *input.Address
	}
	if input.Notes != nil && *input.Notes != customer.Notes {
		fields["notes"] = *input.Notes
	}
	if input.IsActive != nil && *input.IsActive != customer.IsActive {
		fields["is_active"] = *input.IsActive
	}

	// Nothing changed: skip the write entirely
	if len(fields) == 0 {
		c.JSON(http.StatusOK, customer)
		return
	}

	if err := config.DB.Model(&customer).Updates(fields).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	publish(services.TopicCustomerUpdated, services.EntityEvent{ProviderID: providerID, ID: customerID, Fields: fields})
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	customerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("provider_id = ? AND id = ?", providerID, customerID).
		Delete(&models.Customer{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	publish(services.TopicCustomerDeleted, services.EntityEvent{ProviderID: providerID, ID: customerID})
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
