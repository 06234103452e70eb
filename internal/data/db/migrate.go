package db

import (
	"fmt"

	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.AllModels()...)
}

// EnsureContactIndexes adds the postgres-only indexes AutoMigrate cannot
// express from struct tags.
func EnsureContactIndexes(db *gorm.DB) error {
	// Live-contact pagination walks (created_at, id) with deleted rows skipped.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_contacts_cursor_live
		ON contacts (created_at, id)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_contacts_cursor_live: %w", err)
	}

	// Case-insensitive name lookups for search and dedupe prefiltering.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_contacts_display_name_lower
		ON contacts (lower(display_name))
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_contacts_display_name_lower: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_groups_parent_live
		ON groups (parent_id)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_groups_parent_live: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureContactIndexes(s.db); err != nil {
		s.log.Error("Contact index migration failed", "error", err)
		return err
	}
	return nil
}
