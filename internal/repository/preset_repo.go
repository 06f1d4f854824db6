package repository

import (
	"errors"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"gorm.io/gorm"
)

// PresetRepository form preset and revision data access. All lookups are
// tenant-scoped; mutations that span multiple statements run through
// Transaction so the preset service can keep archival and head update atomic.
type PresetRepository interface {
	// Create persists a new preset head
	Create(preset *domain.FormPreset) error
	// FindByID loads a preset by id. Returns common.ErrPresetNotFound if the
	// row does not exist and common.ErrTenantMismatch if it belongs to
	// another tenant.
	FindByID(tenantID string, id uint64) (*domain.FormPreset, error)
	// List returns a tenant's presets, newest first
	List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error)
	// Save writes the preset head (snapshot + version bump)
	Save(preset *domain.FormPreset) error
	// Delete removes a preset and all of its revisions
	Delete(tenantID string, id uint64) error

	// CreateRevision archives one snapshot. A uniqueness violation on
	// (preset_id, version) is returned as common.ErrVersionConflict.
	CreateRevision(rev *domain.FormPresetRevision) error
	// CreateRevisions bulk-inserts imported revisions, same conflict mapping
	CreateRevisions(revs []domain.FormPresetRevision) error
	// FindRevisions returns all revisions of a preset, descending by version
	FindRevisions(tenantID string, presetID uint64) ([]domain.FormPresetRevision, error)
	// FindLatestRevisions returns at most limit revisions, descending by version
	FindLatestRevisions(tenantID string, presetID uint64, limit int) ([]domain.FormPresetRevision, error)
	// FindRevisionByVersion loads one archived revision or common.ErrRevisionNotFound
	FindRevisionByVersion(tenantID string, presetID uint64, version uint) (*domain.FormPresetRevision, error)

	// Transaction runs fn against a repository bound to one transaction;
	// any error rolls the whole unit back
	Transaction(fn func(tx PresetRepository) error) error
}

type presetRepository struct {
	db *gorm.DB
}

// NewPresetRepository creates a new PresetRepository
func NewPresetRepository(db *gorm.DB) PresetRepository {
	return &presetRepository{db: db}
}

func (r *presetRepository) Create(preset *domain.FormPreset) error {
	return r.db.Create(preset).Error
}

func (r *presetRepository) FindByID(tenantID string, id uint64) (*domain.FormPreset, error) {
	var preset domain.FormPreset
	err := r.db.First(&preset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrPresetNotFound
	}
	if err != nil {
		return nil, err
	}
	if preset.TenantID != tenantID {
		return nil, common.ErrTenantMismatch
	}
	return &preset, nil
}

func (r *presetRepository) List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error) {
	var presets []domain.FormPreset
	var total int64

	if err := r.db.Model(&domain.FormPreset{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("tenant_id = ?", tenantID).
		Order("updated_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&presets).Error
	return presets, total, err
}

func (r *presetRepository) Save(preset *domain.FormPreset) error {
	return r.db.Save(preset).Error
}

func (r *presetRepository) Delete(tenantID string, id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND preset_id = ?", tenantID, id).
			Delete(&domain.FormPresetRevision{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&domain.FormPreset{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrPresetNotFound
		}
		return nil
	})
}

func (r *presetRepository) CreateRevision(rev *domain.FormPresetRevision) error {
	if err := r.db.Create(rev).Error; err != nil {
		if IsDuplicateEntry(err) {
			return common.ErrVersionConflict
		}
		return err
	}
	return nil
}

func (r *presetRepository) CreateRevisions(revs []domain.FormPresetRevision) error {
	if len(revs) == 0 {
		return nil
	}
	if err := r.db.Create(&revs).Error; err != nil {
		if IsDuplicateEntry(err) {
			return common.ErrVersionConflict
		}
		return err
	}
	return nil
}

func (r *presetRepository) FindRevisions(tenantID string, presetID uint64) ([]domain.FormPresetRevision, error) {
	var revisions []domain.FormPresetRevision
	err := r.db.Where("tenant_id = ? AND preset_id = ?", tenantID, presetID).
		Order("version DESC").
		Find(&revisions).Error
	return revisions, err
}

func (r *presetRepository) FindLatestRevisions(tenantID string, presetID uint64, limit int) ([]domain.FormPresetRevision, error) {
	var revisions []domain.FormPresetRevision
	err := r.db.Where("tenant_id = ? AND preset_id = ?", tenantID, presetID).
		Order("version DESC").
		Limit(limit).
		Find(&revisions).Error
	return revisions, err
}

func (r *presetRepository) FindRevisionByVersion(tenantID string, presetID uint64, version uint) (*domain.FormPresetRevision, error) {
	var revision domain.FormPresetRevision
	err := r.db.Where("tenant_id = ? AND preset_id = ? AND version = ?", tenantID, presetID, version).
		First(&revision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrRevisionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *presetRepository) Transaction(fn func(tx PresetRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&presetRepository{db: tx})
	})
}
