// Package imagefile reads probe images from disk and finds candidates in a directory.
package imagefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

// Extensions lists the image extensions picked up by Discover, lowercased.
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Load returns the exact bytes of the file at path. A missing or inaccessible
// path yields KindNotFound; any other failure yields KindIOFailure.
func Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, domain.NewError(domain.KindNotFound, "load image", err)
		}
		return nil, domain.NewError(domain.KindIOFailure, "load image", err)
	}
	if !info.Mode().IsRegular() {
		return nil, domain.NewError(domain.KindIOFailure, "load image", fmt.Errorf("%s is not a regular file", path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.KindIOFailure, "load image", err)
	}
	return data, nil
}

// Discover lists regular files directly under dir whose extension matches
// Extensions in any case, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !hasImageExt(e.Name()) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	sort.Strings(found)
	return found, nil
}

func hasImageExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
