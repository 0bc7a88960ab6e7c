package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs data fixes after schema changes. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := normalizeFlipEnums(db); err != nil {
		return err
	}
	return nil
}

// normalizeFlipEnums lowercases platform/status values written by older
// imports and fills blanks with the defaults so filters match them
func normalizeFlipEnums(db *gorm.DB) error {
	if !db.Migrator().HasTable("flip_records") {
		return nil
	}

	result := db.Exec(`UPDATE flip_records SET platform = LOWER(TRIM(platform)) WHERE platform != LOWER(TRIM(platform))`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized platform on %d flip_records rows", result.RowsAffected)
	}

	// "facebook marketplace" was stored verbatim before platforms were enumerated
	if err := db.Exec(`UPDATE flip_records SET platform = 'facebook' WHERE platform IN ('facebook marketplace', 'fb')`).Error; err != nil {
		return err
	}

	if err := db.Exec(`UPDATE flip_records SET platform = 'ebay' WHERE platform IS NULL OR platform = ''`).Error; err != nil {
		return err
	}

	result = db.Exec(`UPDATE flip_records SET status = LOWER(TRIM(status)) WHERE status != LOWER(TRIM(status))`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized status on %d flip_records rows", result.RowsAffected)
	}

	if err := db.Exec(`UPDATE flip_records SET status = 'researching' WHERE status IS NULL OR status = ''`).Error; err != nil {
		return err
	}

	return nil
}
