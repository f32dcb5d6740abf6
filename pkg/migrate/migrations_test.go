package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/loftstay/loftstay-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUnitsMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_units"), []string{
		"CREATE TYPE unit_status AS ENUM ('available', 'occupied', 'maintenance')",
		"CREATE TABLE IF NOT EXISTS units",
		"CHECK (minimum_stay >= 1)",
		"CHECK (maximum_stay IS NULL OR maximum_stay >= minimum_stay)",
		"DROP TABLE IF EXISTS units",
	})
}

func TestUnitAvailabilityMigrationIsUniquePerDate(t *testing.T) {
	assertContains(t, readMigration(t, "create_unit_availability"), []string{
		"CREATE TABLE IF NOT EXISTS unit_availability",
		"ON unit_availability (unit_id, date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_unit_availability_unit_date",
		"FOREIGN KEY (unit_id) REFERENCES units(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS unit_availability",
	})
}

func TestReservationMigrationsOrderDates(t *testing.T) {
	assertContains(t, readMigration(t, "create_reservations"), []string{
		"'pending', 'confirmed', 'cancelled', 'completed', 'no_show'",
		"CHECK (check_out > check_in)",
	})
	assertContains(t, readMigration(t, "create_reservation_locks"), []string{
		"expires_at timestamptz NOT NULL",
		"CHECK (check_out > check_in)",
		"DROP TABLE IF EXISTS reservation_locks",
	})
}

func TestValidateAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.Validate(migrate.Source("migrations")); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	onDisk, err := fs.Glob(migrate.Source("migrations"), "*.sql")
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	if strings.Join(onDisk, ",") != strings.Join(embedded, ",") {
		t.Fatalf("embedded set %v differs from disk %v", embedded, onDisk)
	}
	if len(embedded) == 0 {
		t.Fatal("expected embedded migrations")
	}
}

func TestValidateRejectsBadMigrations(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no version": {
			"create_units.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"duplicate version": {
			"20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"20260101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down": {
			"20260101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		},
		"down first": {
			"20260101000000_a.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")},
		},
		"unbalanced statement": {
			"20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if err := migrate.Validate(fsys); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestMigrationFilename(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 30, 5, 0, time.UTC)
	name, err := migrate.MigrationFilename("  Add Unit Photos! ", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "20261016083005_add_unit_photos.sql" {
		t.Fatalf("unexpected filename %s", name)
	}
	if _, err := migrate.MigrationFilename("!!!", now); err == nil {
		t.Fatal("expected error for unusable name")
	}
}

func TestCreateSQLMigrationWritesValidFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 16, 8, 30, 5, 0, time.UTC)
	path, err := migrate.CreateSQLMigration(dir, "Add Unit Photos", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20261016083005_add_unit_photos.sql" {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.Validate(os.DirFS(dir)); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "Add Unit Photos", now); err == nil {
		t.Fatal("expected an existing migration to be refused")
	}
}
