// services/mutation.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strings"

	"betegna-backend/models"
	"betegna-backend/storage"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// Uploader persists a batch of files and returns their URLs in input order.
type Uploader interface {
	Upload(ctx context.Context, files []storage.File, folder string) ([]string, error)
}

// Fetcher retrieves a foreign remote URL so it can be re-uploaded into
// our own bucket.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (storage.File, error)
}

// HTTPFetcher fetches foreign media over plain HTTP GET.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (storage.File, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return storage.File{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return storage.File{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return storage.File{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return storage.File{}, err
	}

	name := path.Base(strings.SplitN(url, "?", 2)[0])
	return storage.File{
		Name:        name,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Pipeline orchestrates one entity submit: validate, resolve pending
// media into remote URLs, diff against the fresh original, write once,
// publish the mutation event. Within one submit the upload-then-write
// order is strict; the relational write is never issued with a staged
// URI in the payload.
type Pipeline struct {
	Stage    *MediaStage
	Uploader Uploader
	Fetcher  Fetcher
	Bus      evbus.Bus

	// OwnURLPrefix marks remote URLs that already live in our bucket and
	// need no re-upload.
	OwnURLPrefix string
}

// ResolveMedia turns every draft asset into a remote URL, preserving the
// draft order. Staged assets and foreign remote URLs each get one upload
// adapter invocation; an asset already in our bucket is kept as is.
// Staged bytes are NOT released here: the caller releases them once its
// relational write commits, so a failed submit can be resubmitted as is.
func (p *Pipeline) ResolveMedia(ctx context.Context, assets []MediaAsset, folder string) ([]string, error) {
	urls := make([]string, len(assets))

	var stagedFiles []storage.File
	var stagedIdx []int
	var foreignFiles []storage.File
	var foreignIdx []int

	for i, a := range assets {
		switch {
		case a.Uploaded() && (p.OwnURLPrefix == "" || strings.HasPrefix(a.RemoteURL, p.OwnURLPrefix)):
			urls[i] = a.RemoteURL
		case a.Uploaded():
			f, err := p.Fetcher.Fetch(ctx, a.RemoteURL)
			if err != nil {
				return nil, fmt.Errorf("fetch foreign media: %w", err)
			}
			foreignFiles = append(foreignFiles, f)
			foreignIdx = append(foreignIdx, i)
		case IsStagedURI(a.LocalURI):
			f, err := p.Stage.Read(a.LocalURI)
			if err != nil {
				return nil, fmt.Errorf("read staged media: %w", err)
			}
			stagedFiles = append(stagedFiles, f)
			stagedIdx = append(stagedIdx, i)
		default:
			return nil, fmt.Errorf("%w: media asset has neither a staged uri nor a remote url", ErrValidation)
		}
	}

	if len(stagedFiles) > 0 {
		got, err := p.Uploader.Upload(ctx, stagedFiles, folder)
		if err != nil {
			return nil, err
		}
		for j, i := range stagedIdx {
			urls[i] = got[j]
		}
	}

	if len(foreignFiles) > 0 {
		got, err := p.Uploader.Upload(ctx, foreignFiles, folder)
		if err != nil {
			return nil, err
		}
		for j, i := range foreignIdx {
			urls[i] = got[j]
		}
	}

	return urls, nil
}

// ReleaseStaged frees the staged bytes behind assets. Called once the
// write that consumed them has committed; releasing an already-released
// URI is a no-op.
func (p *Pipeline) ReleaseStaged(assets []MediaAsset) {
	for _, a := range assets {
		if IsStagedURI(a.LocalURI) {
			p.Stage.Release(a.LocalURI)
		}
	}
}

func (p *Pipeline) publish(topic string, ev EntityEvent) {
	if p.Bus != nil {
		p.Bus.Publish(topic, ev)
	}
}

// ServiceStore is the persistence surface the pipeline writes services
// through.
type ServiceStore interface {
	Get(ctx context.Context, providerID, id uuid.UUID) (*models.Service, error)
	Insert(ctx context.Context, svc *models.Service) error
	UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error)
}

// MenuItemStore is the persistence surface for menu items.
type MenuItemStore interface {
	Get(ctx context.Context, providerID, id uuid.UUID) (*models.MenuItem, error)
	Insert(ctx context.Context, item *models.MenuItem) error
	UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error)
}

// CreateService validates the draft, resolves its media, and inserts the
// row. Validation failure short-circuits before any upload or write.
func (p *Pipeline) CreateService(ctx context.Context, store ServiceStore, providerID uuid.UUID, d ServiceDraft) (*models.Service, error) {
	if err := ValidateServiceDraft(d); err != nil {
		return nil, err
	}

	urls, err := p.ResolveMedia(ctx, d.Media, "public/"+providerID.String())
	if err != nil {
		return nil, err
	}

	svc := &models.Service{
		ID:            uuid.New(),
		ProviderID:    providerID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         d.Price,
		Discount:      d.Discount,
		CategoryID:    d.CategoryID,
		SubCategoryID: d.SubCategoryID,
		ServiceImage:  models.StringList(urls),
		IsActive:      true,
	}
	if err := store.Insert(ctx, svc); err != nil {
		return nil, err
	}
	p.ReleaseStaged(d.Media)

	p.publish(TopicServiceCreated, EntityEvent{ProviderID: providerID, ID: svc.ID})
	return svc, nil
}

// ServicePatch holds candidate updates. Nil pointers mean "not touched";
// a nil Media slice leaves the image list alone.
type ServicePatch struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	Price         *float64     `json:"price"`
	Discount      *float64     `json:"discount"`
	CategoryID    *uuid.UUID   `json:"categoryId"`
	SubCategoryID *uuid.UUID   `json:"subCategoryId"`
	IsActive      *bool        `json:"isActive"`
	Media         []MediaAsset `json:"media"`
}

// UpdateService diffs the patch against a freshly fetched original and
// writes only the fields that differ. A patch that changes nothing skips
// the write entirely and reports the original back as a no-op success.
func (p *Pipeline) UpdateService(ctx context.Context, store ServiceStore, providerID, id uuid.UUID, patch ServicePatch) (*models.Service, error) {
	original, err := store.Get(ctx, providerID, id)
	if err != nil {
		return nil, err
	}

	price := original.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	discount := original.Discount
	if patch.Discount != nil {
		discount = *patch.Discount
	}
	if err := validateServiceNumbers(price, discount); err != nil {
		return nil, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if patch.Media != nil && len(patch.Media) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrValidation)
	}

	var urls []string
	if patch.Media != nil {
		urls, err = p.ResolveMedia(ctx, patch.Media, "public/"+providerID.String())
		if err != nil {
			return nil, err
		}
	}

	fields := serviceUpdateFields(original, patch, urls)
	if len(fields) == 0 {
		return original, nil
	}

	if err := store.UpdateFields(ctx, providerID, id, fields); err != nil {
		return nil, err
	}
	p.ReleaseStaged(patch.Media)

	merged := *original
	applyServiceFields(&merged, fields)
	p.publish(TopicServiceUpdated, EntityEvent{ProviderID: providerID, ID: id, Fields: fields})
	return &merged, nil
}

// DeleteService removes the row and publishes the deletion.
func (p *Pipeline) DeleteService(ctx context.Context, store ServiceStore, providerID, id uuid.UUID) error {
	n, err := store.Delete(ctx, providerID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	p.publish(TopicServiceDeleted, EntityEvent{ProviderID: providerID, ID: id})
	return nil
}

func serviceUpdateFields(original *models.Service, patch ServicePatch, urls []string) map[string]interface{} {
	fields := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != original.Name {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil && *patch.Description != original.Description {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil && *patch.Price != original.Price {
		fields["price"] = *patch.Price
	}
	if patch.Discount != nil && *patch.Discount != original.Discount {
		fields["discount"] = *patch.Discount
	}
	if patch.CategoryID != nil && !uuidPtrEqual(patch.CategoryID, original.CategoryID) {
		fields["category_id"] = *patch.CategoryID
	}
	if patch.SubCategoryID != nil && !uuidPtrEqual(patch.SubCategoryID, original.SubCategoryID) {
		fields["sub_category_id"] = *patch.SubCategoryID
	}
	if patch.IsActive != nil && *patch.IsActive != original.IsActive {
		fields["is_active"] = *patch.IsActive
	}
	if patch.Media != nil && !slices.Equal(urls, []string(original.ServiceImage)) {
		fields["service_image"] = models.StringList(urls)
	}
	return fields
}

func applyServiceFields(svc *models.Service, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "name":
			svc.Name = v.(string)
		case "description":
			svc.Description = v.(string)
		case "price":
			svc.Price = v.(float64)
		case "discount":
			svc.Discount = v.(float64)
		case "category_id":
			id := v.(uuid.UUID)
			svc.CategoryID = &id
		case "sub_category_id":
			id := v.(uuid.UUID)
			svc.SubCategoryID = &id
		case "is_active":
			svc.IsActive = v.(bool)
		case "service_image":
			svc.ServiceImage = v.(models.StringList)
		}
	}
}

// CreateMenuItem mirrors CreateService for menu items.
func (p *Pipeline) CreateMenuItem(ctx context.Context, store MenuItemStore, providerID uuid.UUID, d MenuItemDraft) (*models.MenuItem, error) {
	if err := ValidateMenuItemDraft(d); err != nil {
		return nil, err
	}

	urls, err := p.ResolveMedia(ctx, d.Media, "public/"+providerID.String())
	if err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		ID:              uuid.New(),
		ProviderID:      providerID,
		Name:            d.Name,
		Description:     d.Description,
		Price:           d.Price,
		DiscountPercent: d.DiscountPercent,
		CategoryID:      d.CategoryID,
		MenuImage:       models.StringList(urls),
		IsAvailable:     true,
	}
	if err := store.Insert(ctx, item); err != nil {
		return nil, err
	}
	p.ReleaseStaged(d.Media)

	p.publish(TopicMenuItemCreated, EntityEvent{ProviderID: providerID, ID: item.ID})
	return item, nil
}

// MenuItemPatch holds candidate menu item updates, nil meaning untouched.
type MenuItemPatch struct {
	Name            *string      `json:"name"`
	Description     *string      `json:"description"`
	Price           *float64     `json:"price"`
	DiscountPercent *float64     `json:"discountPercent"`
	CategoryID      *uuid.UUID   `json:"categoryId"`
	IsAvailable     *bool        `json:"isAvailable"`
	Media           []MediaAsset `json:"media"`
}

// UpdateMenuItem mirrors UpdateService for menu items.
func (p *Pipeline) UpdateMenuItem(ctx context.Context, store MenuItemStore, providerID, id uuid.UUID, patch MenuItemPatch) (*models.MenuItem, error) {
	original, err := store.Get(ctx, providerID, id)
	if err != nil {
		return nil, err
	}

	price := original.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	discountPercent := original.DiscountPercent
	if patch.DiscountPercent != nil {
		discountPercent = *patch.DiscountPercent
	}
	if err := validateMenuItemNumbers(price, discountPercent); err != nil {
		return nil, err
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if patch.Media != nil && len(patch.Media) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", ErrValidation)
	}

	var urls []string
	if patch.Media != nil {
		urls, err = p.ResolveMedia(ctx, patch.Media, "public/"+providerID.String())
		if err != nil {
			return nil, err
		}
	}

	fields := menuItemUpdateFields(original, patch, urls)
	if len(fields) == 0 {
		return original, nil
	}

	if err := store.UpdateFields(ctx, providerID, id, fields); err != nil {
		return nil, err
	}
	p.ReleaseStaged(patch.Media)

	merged := *original
	applyMenuItemFields(&merged, fields)
	p.publish(TopicMenuItemUpdated, EntityEvent{ProviderID: providerID, ID: id, Fields: fields})
	return &merged, nil
}

// DeleteMenuItem removes the row and publishes the deletion.
func (p *Pipeline) DeleteMenuItem(ctx context.Context, store MenuItemStore, providerID, id uuid.UUID) error {
	n, err := store.Delete(ctx, providerID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	p.publish(TopicMenuItemDeleted, EntityEvent{ProviderID: providerID, ID: id})
	return nil
}

func menuItemUpdateFields(original *models.MenuItem, patch MenuItemPatch, urls []string) map[string]interface{} {
	fields := map[string]interface{}{}
	if patch.Name != nil && *patch.Name != original.Name {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil && *patch.Description != original.Description {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil && *patch.Price != original.Price {
		fields["price"] = *patch.Price
	}
	if patch.DiscountPercent != nil && *patch.DiscountPercent != original.DiscountPercent {
		fields["discount_percent"] = *patch.DiscountPercent
	}
	if patch.CategoryID != nil && !uuidPtrEqual(patch.CategoryID, original.CategoryID) {
		fields["category_id"] = *patch.CategoryID
	}
	if patch.IsAvailable != nil && *patch.IsAvailable != original.IsAvailable {
		fields["is_available"] = *patch.IsAvailable
	}
	if patch.Media != nil && !slices.Equal(urls, []string(original.MenuImage)) {
		fields["menu_image"] = models.StringList(urls)
	}
	return fields
}

func applyMenuItemFields(item *models.MenuItem, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "name":
			item.Name = v.(string)
		case "description":
			item.Description = v.(string)
		case "price":
			item.Price = v.(float64)
		case "discount_percent":
			item.DiscountPercent = v.(float64)
		case "category_id":
			id := v.(uuid.UUID)
			item.CategoryID = &id
		case "is_available":
			item.IsAvailable = v.(bool)
		case "menu_image":
			item.MenuImage = v.(models.StringList)
		}
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
