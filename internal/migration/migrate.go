package migration

import (
	"github.com/formloom/formloom-backend/internal/domain"
	"gorm.io/gorm"
)

// Run creates all application tables via AutoMigrate.
// Safe to run multiple times (AutoMigrate is idempotent).
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		// Source forms
		&domain.Form{},
		&domain.FormField{},

		// Preset lineage
		&domain.FormPreset{},
		&domain.FormPresetRevision{},
	)
}
