package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samvad-hq/vision-probe/internal/config"
	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/internal/logger"
	"github.com/samvad-hq/vision-probe/internal/probe"
	"github.com/samvad-hq/vision-probe/internal/storage"
	"github.com/samvad-hq/vision-probe/internal/tmdb"
	"github.com/samvad-hq/vision-probe/pkg/httpclient"
	"github.com/samvad-hq/vision-probe/pkg/publishers"
)

// Prober represents one probe tool runtime. It owns the runner together with
// the optional history store and publisher fanout that receive run events.
type Prober struct {
	cfg        *config.Config
	runner     *probe.Runner
	defaultURL string
	store      storage.Store
	fanout     *publishers.Fanout
	log        logger.Logger
}

// NewProber builds the runtime for tool ("spirit" or "lookalike"), writing the
// transcript to out.
func NewProber(ctx context.Context, cfg *config.Config, tool string, out io.Writer, log logger.Logger) (*Prober, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		p          probe.Probe
		defaultURL string
		timeout    time.Duration
	)
	switch strings.ToLower(strings.TrimSpace(tool)) {
	case domain.ToolSpirit:
		p, defaultURL, timeout = probe.SpiritProbe{}, cfg.SpiritAPIURL, cfg.SpiritTimeout
	case domain.ToolLookalike:
		p = probe.NewLookalikeProbe(cfg.MaxRenderedMatches, photoFinder(cfg, log), log)
		defaultURL, timeout = cfg.LookalikeAPIURL, cfg.LookalikeTimeout
	default:
		return nil, fmt.Errorf("unknown probe tool %q", tool)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		RunTTL:          cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"run_ttl_seconds":          int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := loadFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sinks := []probe.RunSink{historySink{store: store}}
	if fanout.Size() > 0 {
		sinks = append(sinks, publishSink{fanout: fanout, source: cfg.AppName})
	}

	dispatcher := probe.NewDispatcher(httpclient.NewRestyClient(timeout), timeout)
	return &Prober{
		cfg:        cfg,
		runner:     probe.NewRunner(p, dispatcher, probe.NewConsole(out), log, sinks...),
		defaultURL: defaultURL,
		store:      store,
		fanout:     fanout,
		log:        log,
	}, nil
}

// photoFinder returns the TMDb client when an api key is configured.
func photoFinder(cfg *config.Config, log logger.Logger) probe.PhotoFinder {
	if strings.TrimSpace(cfg.TMDBAPIKey) == "" {
		return nil
	}
	log.DebugObj("tmdb photo lookup enabled", "tmdb", map[string]any{
		"base_url": cfg.TMDBBaseURL,
	})
	return tmdb.NewClient(httpclient.NewRestyClient(cfg.TMDBTimeout), cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBImageBaseURL)
}

// loadFanout builds publishers from the publishers file; an empty path means none.
func loadFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   c.ID,
			"type": c.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Console returns the transcript writer of the runner.
func (p *Prober) Console() *probe.Console { return p.runner.Console() }

// Probe returns the tool definition.
func (p *Prober) Probe() probe.Probe { return p.runner.Probe() }

// DefaultURL is the configured endpoint used when none is given.
func (p *Prober) DefaultURL() string { return p.defaultURL }

// Run probes apiURL (or the configured default when empty) with the image.
func (p *Prober) Run(ctx context.Context, imagePath, apiURL string) probe.Result {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = p.defaultURL
	}
	return p.runner.Run(ctx, imagePath, apiURL)
}

// History returns up to limit recent runs of this tool, newest first.
func (p *Prober) History(limit int) ([]domain.RunEvent, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.Recent(p.runner.Probe().Tool(), limit)
}

// Close releases the history store and publishers.
func (p *Prober) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := p.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
