// services/listcache.go
package services

import (
	"sort"
	"sync"

	"betegna-backend/models"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceView is a cached service decorated with lookup display names.
type ServiceView struct {
	models.Service
	CategoryName    string `json:"categoryName,omitempty"`
	SubCategoryName string `json:"subCategoryName,omitempty"`
}

// MenuItemView is a cached menu item decorated with its category name.
type MenuItemView struct {
	models.MenuItem
	CategoryName string `json:"categoryName,omitempty"`
}

// ListLoader refetches owner-scoped lists and the lookup tables.
type ListLoader interface {
	Services(providerID uuid.UUID) ([]models.Service, error)
	MenuItems(providerID uuid.UUID) ([]models.MenuItem, error)
	Customers(providerID uuid.UUID) ([]models.Customer, error)
	Handymen(providerID uuid.UUID) ([]models.HandyMan, error)
	Categories() ([]models.Category, error)
	SubCategories() ([]models.SubCategory, error)
}

// ListCache holds the process-wide per-provider views of each entity
// list. Create and delete events trigger a full owner-scoped refetch;
// update events patch the matching record in place and re-derive the
// denormalized category names from the currently loaded lookups. When
// the lookups have not loaded yet the names stay empty until the next
// refetch rather than blocking.
//
// Cached slices are immutable once handed out: refetches and patches
// install a rebuilt slice, so callers may read a returned list without
// holding any lock.
type ListCache struct {
	mu     sync.RWMutex
	loader ListLoader

	services  map[uuid.UUID][]ServiceView
	menuItems map[uuid.UUID][]MenuItemView
	customers map[uuid.UUID][]models.Customer
	handymen  map[uuid.UUID][]models.HandyMan

	categoryNames    map[uuid.UUID]string
	subCategoryNames map[uuid.UUID]string
	lookupsLoaded    bool
}

func NewListCache(loader ListLoader) *ListCache {
	return &ListCache{
		loader:           loader,
		services:         make(map[uuid.UUID][]ServiceView),
		menuItems:        make(map[uuid.UUID][]MenuItemView),
		customers:        make(map[uuid.UUID][]models.Customer),
		handymen:         make(map[uuid.UUID][]models.HandyMan),
		categoryNames:    make(map[uuid.UUID]string),
		subCategoryNames: make(map[uuid.UUID]string),
	}
}

// Subscribe wires the cache onto the mutation event topics.
func (c *ListCache) Subscribe(bus evbus.Bus) error {
	subs := map[string]interface{}{
		TopicServiceCreated:  func(ev EntityEvent) { c.RefetchServices(ev.ProviderID) },
		TopicServiceDeleted:  func(ev EntityEvent) { c.RefetchServices(ev.ProviderID) },
		TopicServiceUpdated:  func(ev EntityEvent) { c.patchService(ev) },
		TopicMenuItemCreated: func(ev EntityEvent) { c.RefetchMenuItems(ev.ProviderID) },
		TopicMenuItemDeleted: func(ev EntityEvent) { c.RefetchMenuItems(ev.ProviderID) },
		TopicMenuItemUpdated: func(ev EntityEvent) { c.patchMenuItem(ev) },
		TopicCustomerCreated: func(ev EntityEvent) { c.RefetchCustomers(ev.ProviderID) },
		TopicCustomerDeleted: func(ev EntityEvent) { c.RefetchCustomers(ev.ProviderID) },
		TopicCustomerUpdated: func(ev EntityEvent) { c.RefetchCustomers(ev.ProviderID) },
		TopicHandymanCreated: func(ev EntityEvent) { c.RefetchHandymen(ev.ProviderID) },
		TopicHandymanDeleted: func(ev EntityEvent) { c.RefetchHandymen(ev.ProviderID) },
		TopicHandymanUpdated: func(ev EntityEvent) { c.RefetchHandymen(ev.ProviderID) },
	}
	for topic, fn := range subs {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}

// LoadLookups fetches the category tables. Lookup loading is lazy and
// non-fatal; entities render without names until it succeeds.
func (c *ListCache) LoadLookups() error {
	cats, err := c.loader.Categories()
	if err != nil {
		return err
	}
	subs, err := c.loader.SubCategories()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range cats {
		c.categoryNames[cat.ID] = cat.Name
	}
	for _, sub := range subs {
		c.subCategoryNames[sub.ID] = sub.Name
	}
	c.lookupsLoaded = true
	return nil
}

// Services returns the cached view list, populating it on first access.
func (c *ListCache) Services(providerID uuid.UUID) ([]ServiceView, error) {
	c.mu.RLock()
	views, ok := c.services[providerID]
	c.mu.RUnlock()
	if ok {
		return views, nil
	}
	return c.RefetchServices(providerID)
}

func (c *ListCache) RefetchServices(providerID uuid.UUID) ([]ServiceView, error) {
	rows, err := c.loader.Services(providerID)
	if err != nil {
		zap.S().Errorw("service list refetch failed", "provider", providerID, "err", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]ServiceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ServiceView{
			Service:         row,
			CategoryName:    c.categoryNameLocked(row.CategoryID),
			SubCategoryName: c.subCategoryNameLocked(row.SubCategoryID),
		})
	}
	c.services[providerID] = views
	return views, nil
}

func (c *ListCache) MenuItems(providerID uuid.UUID) ([]MenuItemView, error) {
	c.mu.RLock()
	views, ok := c.menuItems[providerID]
	c.mu.RUnlock()
	if ok {
		return views, nil
	}
	return c.RefetchMenuItems(providerID)
}

func (c *ListCache) RefetchMenuItems(providerID uuid.UUID) ([]MenuItemView, error) {
	rows, err := c.loader.MenuItems(providerID)
	if err != nil {
		zap.S().Errorw("menu item list refetch failed", "provider", providerID, "err", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]MenuItemView, 0, len(rows))
	for _, row := range rows {
		views = append(views, MenuItemView{
			MenuItem:     row,
			CategoryName: c.categoryNameLocked(row.CategoryID),
		})
	}
	c.menuItems[providerID] = views
	return views, nil
}

func (c *ListCache) Customers(providerID uuid.UUID) ([]models.Customer, error) {
	c.mu.RLock()
	rows, ok := c.customers[providerID]
	c.mu.RUnlock()
	if ok {
		return rows, nil
	}
	return c.RefetchCustomers(providerID)
}

func (c *ListCache) RefetchCustomers(providerID uuid.UUID) ([]models.Customer, error) {
	rows, err := c.loader.Customers(providerID)
	if err != nil {
		zap.S().Errorw("customer list refetch failed", "provider", providerID, "err", err)
		return nil, err
	}
	c.mu.Lock()
	c.customers[providerID] = rows
	c.mu.Unlock()
	return rows, nil
}

// LatestCustomers sorts by creation time descending after fetch; the
// server does not guarantee list order.
func (c *ListCache) LatestCustomers(providerID uuid.UUID, n int) ([]models.Customer, error) {
	rows, err := c.Customers(providerID)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.Customer, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

func (c *ListCache) Handymen(providerID uuid.UUID) ([]models.HandyMan, error) {
	c.mu.RLock()
	rows, ok := c.handymen[providerID]
	c.mu.RUnlock()
	if ok {
		return rows, nil
	}
	return c.RefetchHandymen(providerID)
}

func (c *ListCache) RefetchHandymen(providerID uuid.UUID) ([]models.HandyMan, error) {
	rows, err := c.loader.Handymen(providerID)
	if err != nil {
		zap.S().Errorw("handyman list refetch failed", "provider", providerID, "err", err)
		return nil, err
	}
	c.mu.Lock()
	c.handymen[providerID] = rows
	c.mu.Unlock()
	return rows, nil
}

// Reset drops every cached view for one provider; used on sign-out.
func (c *ListCache) Reset(providerID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.services, providerID)
	delete(c.menuItems, providerID)
	delete(c.customers, providerID)
	delete(c.handymen, providerID)
}

// ResetAll drops all cached state, lookups included.
func (c *ListCache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services = make(map[uuid.UUID][]ServiceView)
	c.menuItems = make(map[uuid.UUID][]MenuItemView)
	c.customers = make(map[uuid.UUID][]models.Customer)
	c.handymen = make(map[uuid.UUID][]models.HandyMan)
	c.categoryNames = make(map[uuid.UUID]string)
	c.subCategoryNames = make(map[uuid.UUID]string)
	c.lookupsLoaded = false
}

func (c *ListCache) patchService(ev EntityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	views, ok := c.services[ev.ProviderID]
	if !ok {
		return
	}
	for i := range views {
		if views[i].ID != ev.ID {
			continue
		}
		// Patch a rebuilt slice, never the cached one: readers may still
		// be marshaling a slice handed out before this event fired.
		next := make([]ServiceView, len(views))
		copy(next, views)
		applyServiceFields(&next[i].Service, ev.Fields)
		next[i].CategoryName = c.categoryNameLocked(next[i].CategoryID)
		next[i].SubCategoryName = c.subCategoryNameLocked(next[i].SubCategoryID)
		c.services[ev.ProviderID] = next
		return
	}
	// Updated record not in the cached list; drop the list so the next
	// read refetches.
	delete(c.services, ev.ProviderID)
}

func (c *ListCache) patchMenuItem(ev EntityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	views, ok := c.menuItems[ev.ProviderID]
	if !ok {
		return
	}
	for i := range views {
		if views[i].ID != ev.ID {
			continue
		}
		next := make([]MenuItemView, len(views))
		copy(next, views)
		applyMenuItemFields(&next[i].MenuItem, ev.Fields)
		next[i].CategoryName = c.categoryNameLocked(next[i].CategoryID)
		c.menuItems[ev.ProviderID] = next
		return
	}
	delete(c.menuItems, ev.ProviderID)
}

func (c *ListCache) categoryNameLocked(id *uuid.UUID) string {
	if id == nil || !c.lookupsLoaded {
		return ""
	}
	return c.categoryNames[*id]
}

func (c *ListCache) subCategoryNameLocked(id *uuid.UUID) string {
	if id == nil || !c.lookupsLoaded {
		return ""
	}
	return c.subCategoryNames[*id]
}
