package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// FormPreset is the mutable head of a preset lineage. The current snapshot
// lives only on this row; every prior snapshot is a FormPresetRevision.
type FormPreset struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID        string         `gorm:"column:tenant_id;type:varchar(36);index;not null" json:"tenant_id"`
	Name            string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Category        string         `gorm:"column:category;type:varchar(100)" json:"category"`
	Description     string         `gorm:"column:description;type:text" json:"description"`
	SnapshotVersion uint           `gorm:"column:snapshot_version;not null;default:1" json:"snapshot_version"`
	Snapshot        datatypes.JSON `gorm:"column:snapshot;type:json" json:"snapshot"`
	CreatedByUserID string         `gorm:"column:created_by_user_id;type:varchar(36)" json:"created_by_user_id"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (FormPreset) TableName() string { return "form_presets" }

// FormPresetRevision is an immutable archived snapshot of a preset at one
// past version. (preset_id, version) is unique; the constraint doubles as
// the optimistic-concurrency guard for concurrent writers.
type FormPresetRevision struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID        string         `gorm:"column:tenant_id;type:varchar(36);index;not null" json:"tenant_id"`
	PresetID        uint64         `gorm:"column:preset_id;not null;uniqueIndex:uq_preset_revision,priority:1" json:"preset_id"`
	Version         uint           `gorm:"column:version;not null;uniqueIndex:uq_preset_revision,priority:2" json:"version"`
	Snapshot        datatypes.JSON `gorm:"column:snapshot;type:json" json:"snapshot"`
	CreatedByUserID string         `gorm:"column:created_by_user_id;type:varchar(36)" json:"created_by_user_id"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (FormPresetRevision) TableName() string { return "form_preset_revisions" }

// CreatePresetRequest preset creation payload
type CreatePresetRequest struct {
	FormID      uint64 `json:"form_id" binding:"required"`
	Name        string `json:"name" binding:"required,max=255"`
	Category    string `json:"category" binding:"max=100"`
	Description string `json:"description"`
}

// UpdatePresetSourceRequest payload for re-snapshotting a preset from a form
type UpdatePresetSourceRequest struct {
	FormID uint64 `json:"form_id" binding:"required"`
}

// RollbackRequest payload for rolling a preset back to an archived version
type RollbackRequest struct {
	Version uint `json:"version" binding:"required"`
}

// PresetDetail a preset together with its archived revisions (descending by version)
type PresetDetail struct {
	Preset    *FormPreset          `json:"preset"`
	Revisions []FormPresetRevision `json:"revisions"`
}

// PresetExportFormat is the envelope discriminator for preset exports.
const PresetExportFormat = "formloom.preset.export"

// PresetExportFormatVersion is the current envelope format version.
const PresetExportFormatVersion = 1

// PresetEnvelope is the wire document for preset export/import. Snapshots are
// raw JSON and pass through untouched, unknown fields included.
type PresetEnvelope struct {
	Format        string             `json:"format"`
	FormatVersion int                `json:"formatVersion"`
	ExportedAt    time.Time          `json:"exportedAt"`
	Preset        EnvelopePreset     `json:"preset"`
	Revisions     []EnvelopeRevision `json:"revisions,omitempty"`
}

// EnvelopePreset the preset head inside an export envelope
type EnvelopePreset struct {
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Description     string          `json:"description,omitempty"`
	SnapshotVersion uint            `json:"snapshotVersion"`
	Snapshot        json.RawMessage `json:"snapshot"`
}

// EnvelopeRevision a single archived revision inside an export envelope,
// ordered ascending by version on export
type EnvelopeRevision struct {
	Version   uint            `json:"version"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ImportResult summary returned after a successful preset import
type ImportResult struct {
	PresetID        uint64 `json:"preset_id"`
	Name            string `json:"name"`
	SnapshotVersion uint   `json:"snapshot_version"`
	RevisionCount   int    `json:"revision_count"`
}
