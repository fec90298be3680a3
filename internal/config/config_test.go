package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpiritAPIURL != "http://localhost:5001/animal" {
		t.Fatalf("unexpected spirit url %s", cfg.SpiritAPIURL)
	}
	if cfg.LookalikeAPIURL != "http://localhost:5000/find" {
		t.Fatalf("unexpected lookalike url %s", cfg.LookalikeAPIURL)
	}
	if cfg.SpiritTimeout != 60*time.Second || cfg.LookalikeTimeout != 30*time.Second {
		t.Fatalf("unexpected timeouts %v / %v", cfg.SpiritTimeout, cfg.LookalikeTimeout)
	}
	if cfg.MaxRenderedMatches != 5 {
		t.Fatalf("expected 5 rendered matches, got %d", cfg.MaxRenderedMatches)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("history should be disabled by default, got %q", cfg.StorageType)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LOOKALIKE_TIMEOUT_SECONDS", "7")
	t.Setenv("SPIRIT_API_URL", "http://probe.test/animal")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LookalikeTimeout != 7*time.Second {
		t.Fatalf("expected 7s timeout, got %v", cfg.LookalikeTimeout)
	}
	if cfg.SpiritAPIURL != "http://probe.test/animal" {
		t.Fatalf("env override ignored: %s", cfg.SpiritAPIURL)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("SPIRIT_TIMEOUT_SECONDS", "0")
	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestLoadBindsLogLevelFlag(t *testing.T) {
	flags := pflag.NewFlagSet("probe", pflag.ContinueOnError)
	flags.String("log-level", "warn", "")
	if err := flags.Parse([]string{"--log-level", "DEBUG"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug level from flag, got %q", cfg.LogLevel)
	}
}
