package service

import (
	"gorm.io/datatypes"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/pkg/logger"
)

// PresetService owns the preset lineage: version numbering, archival, and
// the export/import boundary. Every mutating operation archives the old
// payload and installs the new one in a single transaction; the version
// counter moves forward by exactly 1 per successful mutation and never
// reuses a value.
type PresetService interface {
	// CreateFromForm snapshots a source form into a new preset at version 1
	CreateFromForm(tenantID, userID string, req *domain.CreatePresetRequest) (*domain.FormPreset, error)
	// UpdateFromForm re-snapshots the source form, archiving the current payload
	UpdateFromForm(tenantID, userID string, presetID, formID uint64) (*domain.PresetDetail, error)
	// Rollback restores an archived revision's snapshot as the live payload.
	// The version counter still advances; the target's number is never reused.
	Rollback(tenantID, userID string, presetID uint64, targetVersion uint) (*domain.PresetDetail, error)
	// Get returns a preset and its revisions (descending by version)
	Get(tenantID string, presetID uint64) (*domain.PresetDetail, error)
	// List returns a tenant's presets, paginated
	List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error)
	// Delete removes a preset together with all of its revisions
	Delete(tenantID string, presetID uint64) error
	// Export produces the wire envelope, optionally with bounded history.
	// Read-only and point-in-time: a concurrent mutation may change the
	// observed version.
	Export(tenantID string, presetID uint64, includeRevisions bool) (*domain.PresetEnvelope, error)
	// Import validates raw envelope bytes and re-hosts them as a brand-new
	// preset under the importing tenant
	Import(tenantID, userID string, raw []byte) (*domain.ImportResult, error)
}

type presetService struct {
	presets repository.PresetRepository
	forms   repository.FormRepository
	codec   *PresetCodec
}

// NewPresetService creates a new PresetService
func NewPresetService(presets repository.PresetRepository, forms repository.FormRepository, codec *PresetCodec) PresetService {
	return &presetService{
		presets: presets,
		forms:   forms,
		codec:   codec,
	}
}

func (s *presetService) CreateFromForm(tenantID, userID string, req *domain.CreatePresetRequest) (preset *domain.FormPreset, err error) {
	defer func() { observePresetOp("create", err) }()

	form, err := s.forms.FindWithFields(tenantID, req.FormID)
	if err != nil {
		return nil, err
	}

	snapshot, err := BuildSnapshot(form)
	if err != nil {
		return nil, err
	}

	preset = &domain.FormPreset{
		TenantID:        tenantID,
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		SnapshotVersion: 1,
		Snapshot:        snapshot,
		CreatedByUserID: userID,
	}
	if err = s.presets.Create(preset); err != nil {
		return nil, err
	}
	return preset, nil
}

func (s *presetService) UpdateFromForm(tenantID, userID string, presetID, formID uint64) (detail *domain.PresetDetail, err error) {
	defer func() { observePresetOp("update", err) }()

	err = s.presets.Transaction(func(tx repository.PresetRepository) error {
		preset, txErr := tx.FindByID(tenantID, presetID)
		if txErr != nil {
			return txErr
		}

		form, txErr := s.forms.FindWithFields(tenantID, formID)
		if txErr != nil {
			return txErr
		}

		// Archive the payload being replaced. Losing the race for this
		// version slot surfaces as ErrVersionConflict and rolls everything back.
		archived := &domain.FormPresetRevision{
			TenantID:        tenantID,
			PresetID:        preset.ID,
			Version:         preset.SnapshotVersion,
			Snapshot:        preset.Snapshot,
			CreatedByUserID: userID,
		}
		if txErr = tx.CreateRevision(archived); txErr != nil {
			return txErr
		}

		snapshot, txErr := BuildSnapshot(form)
		if txErr != nil {
			return txErr
		}
		preset.Snapshot = snapshot
		preset.SnapshotVersion++
		if txErr = tx.Save(preset); txErr != nil {
			return txErr
		}

		revisions, txErr := tx.FindRevisions(tenantID, preset.ID)
		if txErr != nil {
			return txErr
		}
		detail = &domain.PresetDetail{Preset: preset, Revisions: revisions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *presetService) Rollback(tenantID, userID string, presetID uint64, targetVersion uint) (detail *domain.PresetDetail, err error) {
	defer func() { observePresetOp("rollback", err) }()

	err = s.presets.Transaction(func(tx repository.PresetRepository) error {
		preset, txErr := tx.FindByID(tenantID, presetID)
		if txErr != nil {
			return txErr
		}

		// Rolling back to the live version is meaningless and forbidden
		if targetVersion == preset.SnapshotVersion {
			return common.ErrSameVersion
		}

		target, txErr := tx.FindRevisionByVersion(tenantID, preset.ID, targetVersion)
		if txErr != nil {
			return txErr
		}

		// Archive at the version being replaced, not the target's. The
		// lineage only ever moves forward, so the rollback itself stays
		// reconstructable from history.
		archived := &domain.FormPresetRevision{
			TenantID:        tenantID,
			PresetID:        preset.ID,
			Version:         preset.SnapshotVersion,
			Snapshot:        preset.Snapshot,
			CreatedByUserID: userID,
		}
		if txErr = tx.CreateRevision(archived); txErr != nil {
			return txErr
		}

		preset.Snapshot = target.Snapshot
		preset.SnapshotVersion++
		if txErr = tx.Save(preset); txErr != nil {
			return txErr
		}

		revisions, txErr := tx.FindRevisions(tenantID, preset.ID)
		if txErr != nil {
			return txErr
		}
		detail = &domain.PresetDetail{Preset: preset, Revisions: revisions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *presetService) Get(tenantID string, presetID uint64) (*domain.PresetDetail, error) {
	preset, err := s.presets.FindByID(tenantID, presetID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.presets.FindRevisions(tenantID, presetID)
	if err != nil {
		return nil, err
	}
	return &domain.PresetDetail{Preset: preset, Revisions: revisions}, nil
}

func (s *presetService) List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error) {
	return s.presets.List(tenantID, page, limit)
}

func (s *presetService) Delete(tenantID string, presetID uint64) (err error) {
	defer func() { observePresetOp("delete", err) }()
	return s.presets.Delete(tenantID, presetID)
}

func (s *presetService) Export(tenantID string, presetID uint64, includeRevisions bool) (env *domain.PresetEnvelope, err error) {
	defer func() { observePresetOp("export", err) }()

	preset, err := s.presets.FindByID(tenantID, presetID)
	if err != nil {
		return nil, err
	}

	var revisions []domain.FormPresetRevision
	if includeRevisions {
		// Export emits at most the import ceiling, even when history is longer
		revisions, err = s.presets.FindLatestRevisions(tenantID, presetID, s.codec.MaxRevisions())
		if err != nil {
			return nil, err
		}
	}

	return s.codec.Encode(preset, revisions), nil
}

func (s *presetService) Import(tenantID, userID string, raw []byte) (result *domain.ImportResult, err error) {
	defer func() { observePresetOp("import", err) }()

	env, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}

	err = s.presets.Transaction(func(tx repository.PresetRepository) error {
		// Always a brand-new preset under the importing tenant; the
		// envelope's version is taken verbatim as the starting point.
		preset := &domain.FormPreset{
			TenantID:        tenantID,
			Name:            env.Preset.Name,
			Category:        env.Preset.Category,
			Description:     env.Preset.Description,
			SnapshotVersion: env.Preset.SnapshotVersion,
			Snapshot:        datatypes.JSON(env.Preset.Snapshot),
			CreatedByUserID: userID,
		}
		if txErr := tx.Create(preset); txErr != nil {
			return txErr
		}

		revisions := make([]domain.FormPresetRevision, 0, len(env.Revisions))
		for _, rev := range env.Revisions {
			revisions = append(revisions, domain.FormPresetRevision{
				TenantID:        tenantID,
				PresetID:        preset.ID,
				Version:         rev.Version,
				Snapshot:        datatypes.JSON(rev.Snapshot),
				CreatedByUserID: userID,
				CreatedAt:       rev.CreatedAt,
			})
		}
		if txErr := tx.CreateRevisions(revisions); txErr != nil {
			return txErr
		}

		result = &domain.ImportResult{
			PresetID:        preset.ID,
			Name:            preset.Name,
			SnapshotVersion: preset.SnapshotVersion,
			RevisionCount:   len(revisions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info().
		Str("tenant_id", tenantID).
		Uint64("preset_id", result.PresetID).
		Int("revisions", result.RevisionCount).
		Msg("preset imported")
	return result, nil
}
