// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"betegna-backend/services"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceController routes service submits through the mutation pipeline:
// validate, resolve pending media uploads, diff, single write, publish.
type ServiceController struct {
	Pipeline *services.Pipeline
	Store    services.ServiceStore
	Cache    *services.ListCache
}

func NewServiceController(pipeline *services.Pipeline, store services.ServiceStore, cache *services.ListCache) *ServiceController {
	return &ServiceController{Pipeline: pipeline, Store: store, Cache: cache}
}

// Create creates a new service for the provider
func (sc *ServiceController) Create(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var draft services.ServiceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	svc, err := sc.Pipeline.CreateService(c.Request.Context(), sc.Store, providerID, draft)
	if err != nil {
		respondMutationError(c, err, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// List retrieves all services for the provider, decorated with category
// names from the lookup cache
func (sc *ServiceController) List(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	views, err := sc.Cache.Services(providerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, views)
}

// Get retrieves a specific service by ID
func (sc *ServiceController) Get(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	svc, err := sc.Store.Get(c.Request.Context(), providerID, serviceID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, svc)
}

// Update applies a patch; unchanged fields are never written
func (sc *ServiceController) Update(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var patch services.ServicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	svc, err := sc.Pipeline.UpdateService(c.Request.Context(), sc.Store, providerID, serviceID, patch)
	if err != nil {
		respondMutationError(c, err, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, svc)
}

// Delete soft deletes a service
func (sc *ServiceController) Delete(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	serviceID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := sc.Pipeline.DeleteService(c.Request.Context(), sc.Store, providerID, serviceID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// respondMutationError maps pipeline failures onto the error taxonomy:
// validation 400, missing row 404, anything else a generic 500 with the
// cause logged rather than shown.
func respondMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Record not found")
	default:
		zap.S().Errorw("mutation failed", "path", c.Request.URL.Path, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
