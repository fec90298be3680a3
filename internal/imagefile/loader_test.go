package imagefile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

func TestLoadReturnsExactBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "face.jpg")
	want := []byte{0xff, 0xd8, 0x00, 0x01, 0xff, 0xd9}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Load returned %v, want %v", got, want)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLoadDirectoryIsIOFailure(t *testing.T) {
	_, err := Load(t.TempDir())
	if !domain.IsKind(err, domain.KindIOFailure) {
		t.Fatalf("expected io_failure, got %v", err)
	}
}

func TestDiscoverMatchesExtensionsCaseInsensitively(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", "c.WebP", "d.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.jpg", "b.PNG", "c.WebP", "d.jpeg"}
	if len(found) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), found)
	}
	for i, name := range want {
		if filepath.Base(found[i]) != name {
			t.Fatalf("found[%d] = %s, want %s", i, found[i], name)
		}
	}
}

func TestDiscoverEmptyDir(t *testing.T) {
	found, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no files, got %v", found)
	}
}
