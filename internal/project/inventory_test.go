package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabNest/internal/model"
)

func TestDefaultInventoryPath(t *testing.T) {
	path := DefaultInventoryPath()
	if filepath.Base(path) != "inventory.json" {
		t.Errorf("expected filename inventory.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".slabnest" {
		t.Errorf("expected parent dir .slabnest, got %s", filepath.Dir(path))
	}
}

func TestSaveAndLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")

	inv := model.Inventory{Slabs: []model.StockSlab{
		model.NewStockSlab("G-1", "granite", "Absolute Black", 3000, 1800, 30, 2),
	}}
	if err := SaveInventory(path, inv); err != nil {
		t.Fatalf("SaveInventory failed: %v", err)
	}

	loaded, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(loaded.Slabs) != 1 {
		t.Fatalf("expected 1 slab, got %d", len(loaded.Slabs))
	}
	s := loaded.Slabs[0]
	if s.SlabNumber != "G-1" || s.Width != 3000 || s.Quantity != 2 || s.Status != model.SlabAvailable {
		t.Errorf("unexpected slab after round trip %+v", s)
	}
}

func TestLoadInventoryCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "inventory.json")

	inv, err := LoadInventory(path)
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if len(inv.Slabs) != len(model.DefaultInventory().Slabs) {
		t.Errorf("expected default slabs, got %d", len(inv.Slabs))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default inventory should have been saved: %v", err)
	}
}

func TestLoadInventoryInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadInventory(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportInventoryMergesByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")

	existing := model.Inventory{Slabs: []model.StockSlab{{ID: "a", SlabNumber: "A"}}}
	imported := model.Inventory{Slabs: []model.StockSlab{
		{ID: "a", SlabNumber: "A duplicate"},
		{ID: "b", SlabNumber: "B"},
	}}
	if err := SaveInventory(path, imported); err != nil {
		t.Fatal(err)
	}

	merged, err := ImportInventory(path, existing)
	if err != nil {
		t.Fatalf("ImportInventory failed: %v", err)
	}
	if len(merged.Slabs) != 2 {
		t.Fatalf("expected 2 slabs after merge, got %d", len(merged.Slabs))
	}
	if merged.Slabs[0].SlabNumber != "A" || merged.Slabs[1].ID != "b" {
		t.Errorf("unexpected merge result %+v", merged.Slabs)
	}
}

func TestImportInventoryMissingFile(t *testing.T) {
	existing := model.Inventory{Slabs: []model.StockSlab{{ID: "a"}}}
	got, err := ImportInventory(filepath.Join(t.TempDir(), "nope.json"), existing)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(got.Slabs) != 1 {
		t.Error("existing inventory should be returned unchanged")
	}
}
