package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	registry.addMigration(&migration{
		version: "20261001090000",
		up:      mig_20261001090000_tenants_up,
		down:    mig_20261001090000_tenants_down,
	})
}

func mig_20261001090000_tenants_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS tenants (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name VARCHAR(255) NOT NULL,
            subdomain VARCHAR(63) NOT NULL UNIQUE,
            status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'SUSPENDED', 'INACTIVE')),
            subscription_plan VARCHAR(20) NOT NULL DEFAULT 'FREE' CHECK (subscription_plan IN ('FREE', 'PRO', 'ENTERPRISE')),
            max_users INTEGER NOT NULL DEFAULT 5,
            max_projects INTEGER NOT NULL DEFAULT 3,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	return err
}

func mig_20261001090000_tenants_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS tenants;`)
	return err
}
