package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/SlabNest/internal/model"
)

// DefaultInventoryPath returns the default file path for the slab inventory.
// This is located at ~/.slabnest/inventory.json.
func DefaultInventoryPath() string {
	return filepath.Join(DefaultConfigDir(), "inventory.json")
}

// SaveInventory writes the inventory to the specified JSON file.
func SaveInventory(path string, inv model.Inventory) error {
	return writeJSON(path, inv)
}

// LoadInventory reads the inventory from the specified JSON file.
// If the file does not exist, it returns the default inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			return inv, SaveInventory(path, inv)
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	if inv.Slabs == nil {
		inv.Slabs = []model.StockSlab{}
	}
	return inv, nil
}

// ImportInventory merges the inventory stored at path into existing.
// Slabs whose ID is already present are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Slabs))
	for _, s := range existing.Slabs {
		ids[s.ID] = true
	}
	for _, s := range imported.Slabs {
		if !ids[s.ID] {
			existing.Slabs = append(existing.Slabs, s)
			ids[s.ID] = true
		}
	}
	return existing, nil
}
