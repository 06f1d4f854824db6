package repository

import (
	"errors"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"gorm.io/gorm"
)

// FormRepository form and form field data access. This is the source-form
// provider the preset service snapshots from.
type FormRepository interface {
	// Create persists a form together with its fields
	Create(form *domain.Form) error
	// FindWithFields loads a form and its fields ordered by position.
	// Returns common.ErrFormNotFound if the form does not exist and
	// common.ErrTenantMismatch if it belongs to another tenant.
	FindWithFields(tenantID string, id uint64) (*domain.Form, error)
	// List returns a tenant's forms without fields
	List(tenantID string, page, limit int) ([]domain.Form, int64, error)
}

type formRepository struct {
	db *gorm.DB
}

// NewFormRepository creates a new FormRepository
func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) Create(form *domain.Form) error {
	return r.db.Create(form).Error
}

func (r *formRepository) FindWithFields(tenantID string, id uint64) (*domain.Form, error) {
	var form domain.Form
	err := r.db.Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&form, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	if form.TenantID != tenantID {
		return nil, common.ErrTenantMismatch
	}
	return &form, nil
}

func (r *formRepository) List(tenantID string, page, limit int) ([]domain.Form, int64, error) {
	var forms []domain.Form
	var total int64

	if err := r.db.Model(&domain.Form{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("tenant_id = ?", tenantID).
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&forms).Error
	return forms, total, err
}
