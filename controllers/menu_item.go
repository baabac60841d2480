// controllers/menu_item.go
package controllers

import (
	"errors"
	"net/http"

	"betegna-backend/services"
	"betegna-backend/utils"

	"github.com/gin-gonic/gin"
)

// MenuItemController mirrors ServiceController for menu items.
type MenuItemController struct {
	Pipeline *services.Pipeline
	Store    services.MenuItemStore
	Cache    *services.ListCache
}

func NewMenuItemController(pipeline *services.Pipeline, store services.MenuItemStore, cache *services.ListCache) *MenuItemController {
	return &MenuItemController{Pipeline: pipeline, Store: store, Cache: cache}
}

func (mc *MenuItemController) Create(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	var draft services.MenuItemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, err := mc.Pipeline.CreateMenuItem(c.Request.Context(), mc.Store, providerID, draft)
	if err != nil {
		respondMutationError(c, err, "Failed to create menu item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (mc *MenuItemController) List(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}

	views, err := mc.Cache.MenuItems(providerID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve menu items")
		return
	}

	c.JSON(http.StatusOK, views)
}

func (mc *MenuItemController) Get(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	item, err := mc.Store.Get(c.Request.Context(), providerID, itemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Menu item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

func (mc *MenuItemController) Update(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var patch services.MenuItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, err := mc.Pipeline.UpdateMenuItem(c.Request.Context(), mc.Store, providerID, itemID, patch)
	if err != nil {
		respondMutationError(c, err, "Failed to update menu item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (mc *MenuItemController) Delete(c *gin.Context) {
	providerID, ok := currentProviderID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := mc.Pipeline.DeleteMenuItem(c.Request.Context(), mc.Store, providerID, itemID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Menu item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete menu item")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
