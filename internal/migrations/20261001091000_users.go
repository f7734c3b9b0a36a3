package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	registry.addMigration(&migration{
		version: "20261001091000",
		up:      mig_20261001091000_users_up,
		down:    mig_20261001091000_users_down,
	})
}

func mig_20261001091000_users_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            tenant_id UUID REFERENCES tenants(id) ON DELETE CASCADE,
            email VARCHAR(255) NOT NULL,
            full_name VARCHAR(255) NOT NULL,
            password_hash TEXT NOT NULL,
            role VARCHAR(20) NOT NULL CHECK (role IN ('SUPER_ADMIN', 'TENANT_ADMIN', 'USER')),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            CHECK ((role = 'SUPER_ADMIN') = (tenant_id IS NULL))
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_users_tenant_email ON users(tenant_id, LOWER(email));
    `)
	return err
}

func mig_20261001091000_users_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS users;`)
	return err
}
