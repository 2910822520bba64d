package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogMigrationContainsStockConstraint(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE variants",
		"CHECK (stock >= 0)",
		"REFERENCES products (id) ON DELETE CASCADE",
		"DROP TABLE variants",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsSnapshotColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"stock_reverted",
		"payment_instructions",
		"variant_description",
		"REFERENCES variants (id) ON DELETE SET NULL",
		"CHECK (quantity >= 1)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
