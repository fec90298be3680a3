// Package storage keeps a local history of probe runs.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/vision-probe/internal/domain"
)

// Store records finished runs and lists recent ones.
type Store interface {
	Close() error
	Record(evt domain.RunEvent) error
	Recent(tool string, limit int) ([]domain.RunEvent, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RunTTL          time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRunTTL          = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RunTTL <= 0 {
		opts.RunTTL = defaultRunTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                  { return nil }
func (noopStore) Record(domain.RunEvent) error                  { return nil }
func (noopStore) Recent(string, int) ([]domain.RunEvent, error) { return nil, nil }
