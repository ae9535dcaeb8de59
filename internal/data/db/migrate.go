package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/gymflow-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return err
	}
	return EnsureMembershipIndexes(db)
}

// EnsureMembershipIndexes adds the storage-level guards AutoMigrate cannot express.
// The statements are valid on both Postgres and SQLite.
func EnsureMembershipIndexes(db *gorm.DB) error {
	// At most one active/frozen contract per person.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_contract_person_open
		ON contract(person_id)
		WHERE status IN ('active', 'frozen');
	`).Error; err != nil {
		return fmt.Errorf("create ux_contract_person_open: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_contract_history_contract_changed ON contract_history(contract_id, changed_at);`).Error; err != nil {
		return fmt.Errorf("create idx_contract_history_contract_changed: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_training_session_trainer_window ON training_session(trainer_id, start_time, end_time);`).Error; err != nil {
		return fmt.Errorf("create idx_training_session_trainer_window: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_training_session_client_window ON training_session(client_id, start_time, end_time);`).Error; err != nil {
		return fmt.Errorf("create idx_training_session_client_window: %w", err)
	}
	return nil
}
