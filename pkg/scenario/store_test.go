package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"base", "base"},
		{"Hipoteca año 2025", "Hipoteca año 2025"},
		{"../etc/passwd", "___etc_passwd"},
		{"  spaced  ", "spaced"},
		{"", "scenario"},
		{"   ", "scenario"},
	}

	for _, tt := range tests {
		if result := SafeName(tt.name); result != tt.expected {
			t.Errorf("SafeName(%q) = %q, expected %q", tt.name, result, tt.expected)
		}
	}
}

func TestStoreLifecycle(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}

	doc := sampleDocument()
	stored, err := store.Save("base case", doc)
	if err != nil {
		t.Fatalf("Save() unexpected error = %v", err)
	}
	if stored != "base case" {
		t.Errorf("Save() = %q, expected %q", stored, "base case")
	}
	if _, err := store.Save("aggressive", doc); err != nil {
		t.Fatalf("Save() unexpected error = %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List() unexpected error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{"aggressive", "base case"}) {
		t.Errorf("List() = %v, expected [aggressive base case]", names)
	}

	loaded, err := store.Load("base case")
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Inputs, doc.Inputs) || !reflect.DeepEqual(loaded.ExtraPayments, doc.ExtraPayments) {
		t.Errorf("Load() = %+v, expected %+v", loaded, doc)
	}

	if err := store.Delete("base case"); err != nil {
		t.Fatalf("Delete() unexpected error = %v", err)
	}
	if _, err := store.Load("base case"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Delete() error = %v, expected %v", err, ErrNotFound)
	}
	if err := store.Delete("base case"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, expected %v", err, ErrNotFound)
	}
}

func TestStoreListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List() unexpected error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, expected no scenarios", names)
	}
}

func TestStoreRequiresDirectory(t *testing.T) {
	if _, err := NewStore("", nil); err == nil {
		t.Errorf("NewStore(\"\") expected error but got none")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}
	doc := sampleDocument()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.Save("shared", doc); err != nil {
				t.Errorf("Save() unexpected error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := store.Load("shared"); err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("Load() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument()

	for _, name := range []string{"export.json", "export.yaml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, doc); err != nil {
			t.Fatalf("WriteFile(%s) unexpected error = %v", name, err)
		}
		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) unexpected error = %v", name, err)
		}
		if !reflect.DeepEqual(loaded.ExtraPayments, doc.ExtraPayments) {
			t.Errorf("LoadFile(%s).ExtraPayments = %+v, expected %+v", name, loaded.ExtraPayments, doc.ExtraPayments)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("LoadFile(missing) expected error but got none")
	}
}
