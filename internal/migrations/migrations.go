package migrations

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/jmoiron/sqlx"
)

// migration ..
type migration struct {
	version string
	done    bool
	up      func(*sqlx.Tx) error
	down    func(*sqlx.Tx) error
}

// Migrator ..
type Migrator struct {
	db         *sqlx.DB
	versions   []string
	migrations map[string]*migration
}

var registry = &Migrator{
	versions:   []string{},
	migrations: map[string]*migration{},
}

const fileTemplate = `package migrations

import (
	"github.com/jmoiron/sqlx"
)

func init() {
	registry.addMigration(&migration{
		version: "{{.Version}}",
		up:      mig_{{.Version}}_{{.Title}}_up,
		down:    mig_{{.Version}}_{{.Title}}_down,
	})
}

func mig_{{.Version}}_{{.Title}}_up(tx *sqlx.Tx) error {
	return nil
}

func mig_{{.Version}}_{{.Title}}_down(tx *sqlx.Tx) error {
	return nil
}
`

// NewMigrator binds the registered migrations to db and marks the ones
// already recorded in metadata.schema_migrations as done.
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	m := &Migrator{
		db:         db,
		versions:   append([]string{}, registry.versions...),
		migrations: map[string]*migration{},
	}
	for v, mg := range registry.migrations {
		cp := *mg
		m.migrations[v] = &cp
	}

	_, err := m.db.Exec(`CREATE SCHEMA IF NOT EXISTS metadata`)
	if err != nil {
		slog.Error("Unable to create metadata schema", slog.Any("error", err))
		return nil, err
	}

	_, err = m.db.Exec(`CREATE TABLE IF NOT EXISTS metadata.schema_migrations (
		version varchar(255)
	);`)
	if err != nil {
		slog.Error("Unable to create `schema_migrations` table", slog.Any("error", err))
		return nil, err
	}

	rows, err := m.db.Query("SELECT version FROM metadata.schema_migrations;")
	if err != nil {
		slog.Error("Unable to fetch completed migrations", slog.Any("error", err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		err := rows.Scan(&version)
		if err != nil {
			slog.Error("Unable to read row", slog.Any("error", err))
			return nil, err
		}

		if m.migrations[version] != nil {
			m.migrations[version].done = true
		}
	}

	return m, rows.Err()
}

// addMigration keeps versions sorted as migrations register themselves.
func (m *Migrator) addMigration(mg *migration) {
	m.migrations[mg.version] = mg

	index := 0

	for index < len(m.versions) {
		if m.versions[index] > mg.version {
			break
		}

		index++
	}

	m.versions = append(m.versions, mg.version)
	copy(m.versions[index+1:], m.versions[index:])
	m.versions[index] = mg.version
}

// Versions returns every known version in ascending order.
func (m *Migrator) Versions() []string {
	return append([]string{}, m.versions...)
}

// Pending returns the versions not applied yet.
func (m *Migrator) Pending() []string {
	pending := []string{}
	for _, v := range m.versions {
		if !m.migrations[v].done {
			pending = append(pending, v)
		}
	}
	return pending
}

// MigrationStatus ..
func (m *Migrator) MigrationStatus() error {
	for _, v := range m.versions {
		mg := m.migrations[v]

		if mg.done {
			slog.Info(fmt.Sprintf("Migration %s... completed", v))
		} else {
			slog.Info(fmt.Sprintf("Migration %s... pending", v))
		}
	}

	return nil
}

// CreateMigration writes a new, empty migration file into dir.
func CreateMigration(dir, title string) (string, error) {
	var out bytes.Buffer

	version := time.Now().Format("20060102150405")

	in := struct {
		Version string
		Title   string
	}{
		Version: version,
		Title:   title,
	}

	t := template.Must(template.New("migration").Parse(fileTemplate))
	if err := t.Execute(&out, in); err != nil {
		slog.Error("Unable to execute migration template", slog.Any("error", err))
		return "", err
	}

	name := filepath.Join(dir, fmt.Sprintf("%s_%s.go", version, title))
	if err := os.WriteFile(name, out.Bytes(), 0o644); err != nil {
		slog.Error("Unable to create the migration file", slog.Any("error", err))
		return "", err
	}

	slog.Info("Generated new migration file...", slog.String("filename", name))
	return name, nil
}

// Up applies pending migrations in order; step 0 applies all of them.
func (m *Migrator) Up(ctx context.Context, step int) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info("Unable to start transaction to run migrations", slog.Any("error", err))
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			slog.Info("panic", slog.Any("details", err))
			_ = tx.Rollback()
		}
	}()

	applied := []*migration{}
	count := 0
	for _, v := range m.versions {
		if step > 0 && count == step {
			break
		}

		mg := m.migrations[v]
		l := slog.With(slog.String("version", mg.version))

		if mg.done {
			continue
		}

		l.Info("Running up migration...")
		if err := mg.up(tx); err != nil {
			_ = tx.Rollback()
			l.Info("Error occured while running migration", slog.Any("error", err))
			return err
		}

		if _, err := tx.Exec("INSERT INTO metadata.schema_migrations VALUES($1);", mg.version); err != nil {
			_ = tx.Rollback()
			l.Error("Failed to insert completed migrations to `metadata.schema_migrations`", slog.Any("error", err))
			return err
		}

		applied = append(applied, mg)
		count++
		l.Info("Finished up migration...")
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for _, mg := range applied {
		mg.done = true
	}

	return nil
}

// Down reverts applied migrations newest first; step 0 reverts all of them.
func (m *Migrator) Down(ctx context.Context, step int) error {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info("Unable to start transaction to run migrations", slog.Any("error", err))
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			slog.Info("panic", slog.Any("details", err))
			_ = tx.Rollback()
		}
	}()

	reverted := []*migration{}
	count := 0
	for _, v := range reverse(m.versions) {
		if step > 0 && count == step {
			break
		}

		mg := m.migrations[v]
		l := slog.With(slog.String("version", mg.version))

		if !mg.done {
			continue
		}

		l.Info("Running down migration...")
		if err := mg.down(tx); err != nil {
			_ = tx.Rollback()
			l.Info("Error occured while running migration", slog.Any("error", err))
			return err
		}

		if _, err := tx.Exec("DELETE FROM metadata.schema_migrations WHERE version = $1;", mg.version); err != nil {
			_ = tx.Rollback()
			l.Info("Failed to remove reverted migrations from `metadata.schema_migrations`", slog.Any("error", err))
			return err
		}

		reverted = append(reverted, mg)
		count++
		l.Info("Finished down migration...")
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for _, mg := range reverted {
		mg.done = false
	}

	return nil
}

func reverse(arr []string) []string {
	out := make([]string, len(arr))
	for i, v := range arr {
		out[len(arr)-1-i] = v
	}
	return out
}
