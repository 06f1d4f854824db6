package service

import (
	"encoding/json"
	"time"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
)

// PresetCodec encodes presets into the export envelope and validates and
// decodes incoming envelopes before anything touches the store.
type PresetCodec struct {
	maxImportBytes     int
	maxImportRevisions int
}

// NewPresetCodec creates a PresetCodec with the configured import ceilings
func NewPresetCodec(maxImportBytes, maxImportRevisions int) *PresetCodec {
	return &PresetCodec{
		maxImportBytes:     maxImportBytes,
		maxImportRevisions: maxImportRevisions,
	}
}

// MaxRevisions returns the revision ceiling, which also caps how much
// history an export emits
func (c *PresetCodec) MaxRevisions() int {
	return c.maxImportRevisions
}

// Encode builds an export envelope from a preset head and its revisions.
// Revisions arrive in fetch order (descending by version) and are emitted
// ascending, as the wire format requires.
func (c *PresetCodec) Encode(preset *domain.FormPreset, revisions []domain.FormPresetRevision) *domain.PresetEnvelope {
	env := &domain.PresetEnvelope{
		Format:        domain.PresetExportFormat,
		FormatVersion: domain.PresetExportFormatVersion,
		ExportedAt:    time.Now().UTC(),
		Preset: domain.EnvelopePreset{
			Name:            preset.Name,
			Category:        preset.Category,
			Description:     preset.Description,
			SnapshotVersion: preset.SnapshotVersion,
			Snapshot:        json.RawMessage(preset.Snapshot),
		},
	}

	if len(revisions) > 0 {
		env.Revisions = make([]domain.EnvelopeRevision, 0, len(revisions))
		for i := len(revisions) - 1; i >= 0; i-- {
			rev := revisions[i]
			env.Revisions = append(env.Revisions, domain.EnvelopeRevision{
				Version:   rev.Version,
				Snapshot:  json.RawMessage(rev.Snapshot),
				CreatedAt: rev.CreatedAt,
			})
		}
	}

	return env
}

// Decode validates raw envelope bytes and parses them. The byte ceiling is
// enforced before json.Unmarshal runs; structural problems map to
// ErrInvalidImport and the revision-count ceiling to ErrImportRevisionLimit.
func (c *PresetCodec) Decode(raw []byte) (*domain.PresetEnvelope, error) {
	if len(raw) > c.maxImportBytes {
		return nil, common.ErrImportTooLarge
	}

	var env domain.PresetEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, common.ErrInvalidImport
	}

	if env.Format != domain.PresetExportFormat {
		return nil, common.ErrInvalidImport
	}
	if env.FormatVersion != domain.PresetExportFormatVersion {
		return nil, common.ErrInvalidImport
	}
	if env.Preset.Name == "" {
		return nil, common.ErrInvalidImport
	}
	if env.Preset.SnapshotVersion < 1 {
		return nil, common.ErrInvalidImport
	}
	if len(env.Preset.Snapshot) == 0 {
		return nil, common.ErrInvalidImport
	}

	if len(env.Revisions) > c.maxImportRevisions {
		return nil, common.ErrImportRevisionLimit
	}

	seen := make(map[uint]struct{}, len(env.Revisions))
	for _, rev := range env.Revisions {
		if rev.Version < 1 {
			return nil, common.ErrInvalidImport
		}
		if len(rev.Snapshot) == 0 {
			return nil, common.ErrInvalidImport
		}
		if _, dup := seen[rev.Version]; dup {
			return nil, common.ErrInvalidImport
		}
		seen[rev.Version] = struct{}{}
	}

	return &env, nil
}
