package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates store with custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}
		if store.IsModified() {
			t.Error("New store should not be modified")
		}
	})

	t.Run("loads existing config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		config := map[string]interface{}{
			"version": "1.0",
			"sections": map[string]map[string]interface{}{
				"browser": {"headless": false},
			},
		}
		data, _ := json.MarshalIndent(config, "", "  ")
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		section, err := store.GetSection("browser")
		if err != nil {
			t.Fatalf("GetSection failed: %v", err)
		}
		if section["headless"] != false {
			t.Errorf("Expected headless=false, got %v", section["headless"])
		}
	})

	t.Run("rejects malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}
		if _, err := NewFileStore(configPath); err == nil {
			t.Error("Expected error for malformed config")
		}
	})
}

func TestFileStore_SaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.json")
	store, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.SetSection("media", map[string]interface{}{"voice": "echo"}); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	if !store.IsModified() {
		t.Error("Store should be modified after SetSection")
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.IsModified() {
		t.Error("Store should not be modified after Save")
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should be renamed away")
	}

	reloaded, err := NewFileStore(configPath)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	section, _ := reloaded.GetSection("media")
	if section["voice"] != "echo" {
		t.Errorf("Expected voice=echo, got %v", section["voice"])
	}
}

func TestFileStore_GetSectionReturnsCopy(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	_ = store.SetSection("browser", map[string]interface{}{"headless": true})

	section, _ := store.GetSection("browser")
	section["headless"] = false

	again, _ := store.GetSection("browser")
	if again["headless"] != true {
		t.Error("Mutating a returned section must not change the store")
	}

	missing, _ := store.GetSection("nope")
	if len(missing) != 0 {
		t.Errorf("Expected empty map for unknown section, got %v", missing)
	}
}
