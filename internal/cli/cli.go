// Package cli holds the command-line flow shared by the probe binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/vision-probe/internal/app"
	"github.com/samvad-hq/vision-probe/internal/config"
	"github.com/samvad-hq/vision-probe/internal/domain"
	"github.com/samvad-hq/vision-probe/internal/imagefile"
	"github.com/samvad-hq/vision-probe/internal/logger"
	"github.com/samvad-hq/vision-probe/internal/probe"
)

const listedImages = 5

// Options describes one binary invocation.
type Options struct {
	Tool   string    // domain.ToolSpirit or domain.ToolLookalike
	Name   string    // binary name shown in usage lines
	Args   []string  // arguments without the program name
	Stdout io.Writer // transcript destination, os.Stdout when nil
	Dir    string    // directory scanned when no image is given, "." when empty
}

// Main runs one probe invocation and returns the process exit code. A non-nil
// error means the tool could not start at all.
func Main(ctx context.Context, opts Options) (int, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}

	flags := pflag.NewFlagSet(opts.Name, pflag.ContinueOnError)
	history := flags.Int("history", 0, "print the last N recorded runs of this tool and exit")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [image_path] [api_url]\n", opts.Name)
		flags.PrintDefaults()
	}
	if err := flags.Parse(opts.Args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, nil
		}
		return 1, fmt.Errorf("parse flags: %w", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return 1, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return 1, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	prober, err := app.NewProber(ctx, cfg, opts.Tool, opts.Stdout, log)
	if err != nil {
		logger.ErrorObj("failed to initialize prober", "error", err)
		return 1, err
	}
	defer func() {
		if err := prober.Close(); err != nil {
			log.ErrorObj("failed to release prober", "error", err.Error())
		}
	}()

	if *history > 0 {
		if err := printHistory(prober, cfg, *history); err != nil {
			return 1, fmt.Errorf("read history: %w", err)
		}
		return 0, nil
	}

	c := prober.Console()
	c.Intro(prober.Probe())

	args := flags.Args()
	var imagePath, apiURL string
	if len(args) == 0 {
		var found bool
		imagePath, found, err = discoverImage(c, opts, prober.DefaultURL())
		if err != nil {
			return 1, err
		}
		if !found {
			return 0, nil
		}
	} else {
		imagePath = args[0]
		if len(args) > 1 {
			apiURL = args[1]
		}
	}

	res := prober.Run(ctx, imagePath, apiURL)
	c.Banner(res.Success)
	if !res.Success {
		return 1, nil
	}
	return 0, nil
}

// discoverImage prints usage and picks the first image file of opts.Dir.
func discoverImage(c *probe.Console, opts Options, defaultURL string) (string, bool, error) {
	c.Printf("Usage: %s <image_path> [api_url]", opts.Name)
	c.Section("Example:")
	c.Printf("  %s photo.jpg", opts.Name)
	c.Printf("  %s photo.jpg %s", opts.Name, defaultURL)

	c.Section("🔍 Looking for image files in current directory...")
	images, err := imagefile.Discover(opts.Dir)
	if err != nil {
		return "", false, fmt.Errorf("scan for images: %w", err)
	}

	if len(images) == 0 {
		if opts.Tool == domain.ToolLookalike {
			c.Println("No image files found in current directory.")
		} else {
			c.Println("No image files found. Please provide a path to an image.")
		}
		return "", false, nil
	}

	if opts.Tool == domain.ToolLookalike {
		c.Println("Found image files:")
		for i, img := range images {
			if i == listedImages {
				break
			}
			c.Printf("  - %s", filepath.Base(img))
		}
		c.Section("🎯 Using: " + images[0])
	} else {
		c.Section("🎯 Using first found image: " + images[0])
	}
	return images[0], true, nil
}

func printHistory(p *app.Prober, cfg *config.Config, limit int) error {
	c := p.Console()
	runs, err := p.History(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		if cfg.StorageType == "bbolt" {
			c.Printf("No recorded %s runs.", p.Probe().Tool())
		} else {
			c.Println("Run history is disabled (set STORAGE_TYPE=bbolt to record runs).")
		}
		return nil
	}

	c.Printf("%s Last %d %s runs:", p.Probe().Icon(), len(runs), p.Probe().Tool())
	c.Rule()
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed (" + r.FailureKind + ")"
		}
		c.Printf("%s  %-28s %s -> %s [%d, %dms]",
			r.StartedAt.Local().Format(time.DateTime), status, r.ImagePath, r.APIURL, r.StatusCode, r.ElapsedMs)
	}
	return nil
}
