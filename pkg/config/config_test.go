package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://icengine:pw@localhost:5432/icengine")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Port = %s, want 8090", cfg.Port)
	}
	if cfg.Scoring.SmoothingAlpha != 0.7 {
		t.Errorf("SmoothingAlpha = %v, want 0.7", cfg.Scoring.SmoothingAlpha)
	}
	if cfg.Scoring.MinChangeFloor != 0.5 {
		t.Errorf("MinChangeFloor = %v, want 0.5", cfg.Scoring.MinChangeFloor)
	}
	if cfg.Scoring.MinSampleSize != 5 {
		t.Errorf("MinSampleSize = %v, want 5", cfg.Scoring.MinSampleSize)
	}
	if cfg.Database.MaxConnLifetime != time.Hour {
		t.Errorf("MaxConnLifetime = %v, want 1h", cfg.Database.MaxConnLifetime)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for missing DATABASE_URL")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/icengine")
	os.Setenv("ENV", "something-else")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("ENV")
	}()

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid ENV")
	}
}

func TestLoad_InvalidAlpha(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost/icengine")
	os.Setenv("SCORE_SMOOTHING_ALPHA", "1.5")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("SCORE_SMOOTHING_ALPHA")
	}()

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for alpha > 1")
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "2.5")
	defer os.Unsetenv("TEST_FLOAT")

	if got := getEnvAsFloat("TEST_FLOAT", 1.0); got != 2.5 {
		t.Errorf("getEnvAsFloat = %v, want 2.5", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT_MISSING", 1.0); got != 1.0 {
		t.Errorf("getEnvAsFloat default = %v, want 1.0", got)
	}
}
