package controllers

import (
	"net/http"

	"betegna-backend/services"
	"betegna-backend/utils"

	evbus "github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Shared collaborators for the package-level handlers, wired once from
// main. The struct-based controllers receive theirs explicitly.
var (
	Bus      evbus.Bus
	Cache    *services.ListCache
	Notifier *services.Notifier
)

func Init(bus evbus.Bus, cache *services.ListCache, notifier *services.Notifier) {
	Bus = bus
	Cache = cache
	Notifier = notifier
}

func publish(topic string, ev services.EntityEvent) {
	if Bus != nil {
		Bus.Publish(topic, ev)
	}
}

// currentProviderID pulls the tenant id set by the auth middleware.
// Writes the error response itself when the claim is missing or bad.
func currentProviderID(c *gin.Context) (uuid.UUID, bool) {
	providerID, exists := c.Get("providerId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Provider ID not found in context")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(providerID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid provider ID format")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :id route parameter.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
