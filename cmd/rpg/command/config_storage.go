package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rpg/internal/content"
	"github.com/pixil98/go-rpg/internal/storage"
)

type StorageConfig struct {
	// Path is the sqlite database file. ":memory:" runs ephemeral.
	Path string `json:"path"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required"))
	}

	return el.Err()
}

func (c *StorageConfig) buildStore() (*storage.Store, error) {
	if c.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}
	return storage.Open(c.Path)
}

type ContentConfig struct {
	ItemsPath string `json:"items_path"`
	LootPath  string `json:"loot_path"`
}

func (c *ContentConfig) validate() error {
	el := errors.NewErrorList()

	for name, path := range map[string]string{
		"items_path": c.ItemsPath,
		"loot_path":  c.LootPath,
	} {
		if path == "" {
			el.Add(fmt.Errorf("content: %s is required", name))
			continue
		}
		if _, err := os.Stat(path); err != nil {
			el.Add(fmt.Errorf("content: invalid %s %q: %w", name, path, err))
		}
	}

	return el.Err()
}

func (c *ContentConfig) buildStores() (*content.Stores, error) {
	return content.Load(c.ItemsPath, c.LootPath)
}
