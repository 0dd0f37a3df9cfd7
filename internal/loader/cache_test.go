package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	path := createTempCSV(t, validCSV)
	cache := NewCache(filepath.Join(t.TempDir(), ".cache"))

	first, err := NewCSVLoader(path, cache, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}

	cached, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cache.Load() error = %v", err)
	}
	if len(cached.Orders) != len(first.Orders) || cached.Source != path {
		t.Errorf("cached dataset = %d orders from %q", len(cached.Orders), cached.Source)
	}
	if cached.Orders[0].Attributes["ship_mode"] != "Second Class" {
		t.Errorf("cached attributes = %v", cached.Orders[0].Attributes)
	}
}

func TestCache_StaleAfterModification(t *testing.T) {
	path := createTempCSV(t, validCSV)
	cache := NewCache(t.TempDir())

	if _, err := NewCSVLoader(path, cache, nil).Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load(path); err == nil {
		t.Error("cache.Load() should reject an entry older than the file")
	}
}

func TestCache_Missing(t *testing.T) {
	cache := NewCache(t.TempDir())
	if _, err := cache.Load(createTempCSV(t, validCSV)); err == nil {
		t.Error("cache.Load() without a saved entry should fail")
	}
}
