// services/draft.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation marks client errors caught before any storage or
// database call is made.
var ErrValidation = errors.New("validation failed")

// MediaAsset is an image attached to a draft. Preview-only assets carry a
// staged LocalURI and no RemoteURL; uploaded assets carry a RemoteURL.
type MediaAsset struct {
	LocalURI  string `json:"localUri,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
}

// Uploaded reports whether the asset already lives in remote storage.
func (m MediaAsset) Uploaded() bool {
	return m.RemoteURL != ""
}

// SetCover moves the asset at index k to the front. All other assets keep
// their relative order. Out-of-range k leaves the list untouched.
func SetCover(assets []MediaAsset, k int) []MediaAsset {
	if k <= 0 || k >= len(assets) {
		return assets
	}
	cover := assets[k]
	out := make([]MediaAsset, 0, len(assets))
	out = append(out, cover)
	out = append(out, assets[:k]...)
	out = append(out, assets[k+1:]...)
	return out
}

// ServiceDraft is the transient form state for creating a service.
type ServiceDraft struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	Discount      float64      `json:"discount"`
	CategoryID    *uuid.UUID   `json:"categoryId"`
	SubCategoryID *uuid.UUID   `json:"subCategoryId"`
	Media         []MediaAsset `json:"media"`
}

// MenuItemDraft is the transient form state for creating a menu item.
type MenuItemDraft struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Price           float64      `json:"price"`
	DiscountPercent float64      `json:"discountPercent"`
	CategoryID      *uuid.UUID   `json:"categoryId"`
	Media           []MediaAsset `json:"media"`
}

// ValidateServiceDraft enforces the service field rules: name present,
// price > 0, 0 <= discount <= price, at least one media on create.
func ValidateServiceDraft(d ServiceDraft) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateServiceNumbers(d.Price, d.Discount); err != nil {
		return err
	}
	if len(d.Media) == 0 {
		return fmt.Errorf("%w: at least one image is required", ErrValidation)
	}
	return nil
}

// ValidateMenuItemDraft enforces the menu item field rules: name present,
// price > 0, discount percent in [0, 99], at least one media on create.
func ValidateMenuItemDraft(d MenuItemDraft) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validateMenuItemNumbers(d.Price, d.DiscountPercent); err != nil {
		return err
	}
	if len(d.Media) == 0 {
		return fmt.Errorf("%w: at least one image is required", ErrValidation)
	}
	return nil
}

func validateServiceNumbers(price, discount float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	if discount < 0 || discount > price {
		return fmt.Errorf("%w: discount must be between 0 and the price", ErrValidation)
	}
	return nil
}

func validateMenuItemNumbers(price, discountPercent float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	if discountPercent < 0 || discountPercent > 99 {
		return fmt.Errorf("%w: discount percent must be between 0 and 99", ErrValidation)
	}
	return nil
}
