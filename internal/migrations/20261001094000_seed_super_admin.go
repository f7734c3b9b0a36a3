package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/curaious/taskdesk/internal/config"
)

const SuperAdminEmail = "admin@taskdesk.local"

func init() {
	registry.addMigration(&migration{
		version: "20261001094000",
		up:      mig_20261001094000_seed_super_admin_up,
		down:    mig_20261001094000_seed_super_admin_down,
	})
}

func mig_20261001094000_seed_super_admin_up(tx *sqlx.Tx) error {
	password := config.GetEnvOrDefault("SUPER_ADMIN_PASSWORD", "changeme123")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	_, err = tx.Exec(`
        INSERT INTO users (tenant_id, email, full_name, password_hash, role, is_active)
        SELECT NULL, $1, $2, $3, 'SUPER_ADMIN', TRUE
        WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = 'SUPER_ADMIN' AND LOWER(email) = LOWER($1));
    `, SuperAdminEmail, "Platform Admin", string(hashedPassword))

	return err
}

func mig_20261001094000_seed_super_admin_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DELETE FROM users WHERE role = 'SUPER_ADMIN' AND email = $1;`, SuperAdminEmail)
	return err
}
