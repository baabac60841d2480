// services/store.go
package services

import (
	"context"
	"errors"

	"betegna-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormServiceStore backs ServiceStore with the shared gorm handle.
type GormServiceStore struct {
	DB *gorm.DB
}

func (s *GormServiceStore) Get(ctx context.Context, providerID, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := s.DB.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *GormServiceStore) Insert(ctx context.Context, svc *models.Service) error {
	return s.DB.WithContext(ctx).Create(svc).Error
}

func (s *GormServiceStore) UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error {
	return s.DB.WithContext(ctx).
		Model(&models.Service{}).
		Where("provider_id = ? AND id = ?", providerID, id).
		Updates(fields).Error
}

func (s *GormServiceStore) Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		Delete(&models.Service{})
	return result.RowsAffected, result.Error
}

// GormMenuItemStore backs MenuItemStore with the shared gorm handle.
type GormMenuItemStore struct {
	DB *gorm.DB
}

func (s *GormMenuItemStore) Get(ctx context.Context, providerID, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.DB.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *GormMenuItemStore) Insert(ctx context.Context, item *models.MenuItem) error {
	return s.DB.WithContext(ctx).Create(item).Error
}

func (s *GormMenuItemStore) UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error {
	return s.DB.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("provider_id = ? AND id = ?", providerID, id).
		Updates(fields).Error
}

func (s *GormMenuItemStore) Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("provider_id = ? AND id = ?", providerID, id).
		Delete(&models.MenuItem{})
	return result.RowsAffected, result.Error
}

// GormListLoader backs the list cache refetches.
type GormListLoader struct {
	DB *gorm.DB
}

func (l *GormListLoader) Services(providerID uuid.UUID) ([]models.Service, error) {
	var out []models.Service
	err := l.DB.Where("provider_id = ?", providerID).Find(&out).Error
	return out, err
}

func (l *GormListLoader) MenuItems(providerID uuid.UUID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := l.DB.Where("provider_id = ?", providerID).Find(&out).Error
	return out, err
}

func (l *GormListLoader) Customers(providerID uuid.UUID) ([]models.Customer, error) {
	var out []models.Customer
	err := l.DB.Where("provider_id = ?", providerID).Find(&out).Error
	return out, err
}

func (l *GormListLoader) Handymen(providerID uuid.UUID) ([]models.HandyMan, error) {
	var out []models.HandyMan
	err := l.DB.Where("provider_id = ?", providerID).Find(&out).Error
	return out, err
}

func (l *GormListLoader) Categories() ([]models.Category, error) {
	var out []models.Category
	err := l.DB.Find(&out).Error
	return out, err
}

func (l *GormListLoader) SubCategories() ([]models.SubCategory, error) {
	var out []models.SubCategory
	err := l.DB.Find(&out).Error
	return out, err
}
