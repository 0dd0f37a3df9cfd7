package loader

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const cacheVersion = "v1"

// Cache stores parsed datasets as gob files so a restart skips CSV parsing.
// An entry is stale once the source file is modified after it was written.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) filename(csvPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(csvPath)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (c *Cache) Save(csvPath string, ds *Dataset) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(c.filename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(ds)
}

// Load returns the cached dataset for csvPath if it is newer than the file.
func (c *Cache) Load(csvPath string) (*Dataset, error) {
	info, err := os.Stat(csvPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(c.filename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ds Dataset
	if err := gob.NewDecoder(file).Decode(&ds); err != nil {
		return nil, err
	}

	if !info.ModTime().Before(ds.LoadedAt) {
		return nil, fmt.Errorf("cache for %s is stale", csvPath)
	}
	return &ds, nil
}
