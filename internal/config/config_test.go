package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Poe.Account = "exile"
	cfg.Poe.SessionID = "deadbeef"
	return cfg
}

func TestValidateAcceptsDefaultsWithCredentials(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresSessionID(t *testing.T) {
	cfg := validConfig()
	cfg.Poe.SessionID = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing session_id")
	}
	if !strings.Contains(err.Error(), "session_id") {
		t.Errorf("error %q does not mention session_id", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "gamble"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("err = %v, want unknown mode error", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "nope"
	cfg.Poe.League = ""
	cfg.Ninja.BaseURL = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"unknown mode", "league", "ninja"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateTelegramPairing(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.TelegramToken = "123:abc"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "telegram") {
		t.Fatalf("err = %v, want telegram pairing error", err)
	}
	cfg.Notify.TelegramChatID = "42"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with paired telegram settings: %v", err)
	}
}

func TestValidateSkipsDisabledSubsystems(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addr = ""
	cfg.Redis.PoolSize = 0
	cfg.S3.Bucket = ""
	cfg.S3.Region = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with redis and s3 disabled: %v", err)
	}

	cfg.S3.Bucket = "stash-archive"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "region") {
		t.Fatalf("err = %v, want s3 region error", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
mode = "watch"

[poe]
league = "Settlers"
account = "exile"
session_id = "deadbeef"

[pricing]
min_value_chaos = 10.0
watch_interval = "5m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "watch" {
		t.Errorf("Mode = %q, want watch", cfg.Mode)
	}
	if cfg.Poe.League != "Settlers" {
		t.Errorf("League = %q, want Settlers", cfg.Poe.League)
	}
	if cfg.Pricing.MinValueChaos != 10 {
		t.Errorf("MinValueChaos = %v, want 10", cfg.Pricing.MinValueChaos)
	}
	if cfg.Pricing.WatchInterval.Duration != 5*time.Minute {
		t.Errorf("WatchInterval = %v, want 5m", cfg.Pricing.WatchInterval.Duration)
	}
	// Untouched values keep their defaults.
	if cfg.Ninja.BaseURL != "https://poe.ninja/api/data" {
		t.Errorf("Ninja.BaseURL = %q, want default", cfg.Ninja.BaseURL)
	}
	if cfg.Pricing.TopN != 50 {
		t.Errorf("TopN = %d, want default 50", cfg.Pricing.TopN)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PRICER_POE_LEAGUE", "Necropolis")
	t.Setenv("POESESSID", "from-env")
	t.Setenv("PRICER_PRICING_TOP_N", "7")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Poe.League != "Necropolis" {
		t.Errorf("League = %q, want Necropolis", cfg.Poe.League)
	}
	if cfg.Poe.SessionID != "from-env" {
		t.Errorf("SessionID = %q, want from-env", cfg.Poe.SessionID)
	}
	if cfg.Pricing.TopN != 7 {
		t.Errorf("TopN = %d, want 7", cfg.Pricing.TopN)
	}
}

func TestSessionIDSpecificVarBeatsAlias(t *testing.T) {
	t.Setenv("POESESSID", "alias")
	t.Setenv("PRICER_POE_SESSION_ID", "specific")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Poe.SessionID != "specific" {
		t.Errorf("SessionID = %q, want specific", cfg.Poe.SessionID)
	}
}
