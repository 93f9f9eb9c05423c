package filewalker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWalkFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.d", "a.d", "sub/c.d", "ignore.baf", "notes.md")

	got, err := New(".d").Walk(dir)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.d"),
		filepath.Join(dir, "b.d"),
		filepath.Join(dir, "sub", "c.d"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalkDefaultExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.D", "b.BAF", "c.itm", "d.cre", "e.2da", "f.txt")

	got, err := New().Walk(dir)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("Walk() found %d files, want 5: %v", len(got), got)
	}
}

func TestWalkRejectsFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.d")

	if _, err := New(".d").Walk(filepath.Join(dir, "a.d")); err == nil {
		t.Error("Walk() on a plain file should fail")
	}
}
