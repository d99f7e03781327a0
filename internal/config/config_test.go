package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/reviewlens/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PreviewRows != 5 || c.ListenAddr != ":8080" || c.MaxSessions != 1000 {
		t.Fatalf("defaults = %+v", c)
	}
	if filepath.Base(c.DatasetPath) != "customer_reviews.csv" {
		t.Fatalf("default dataset path = %q", c.DatasetPath)
	}
	if c.SessionTTL() != 30*time.Minute {
		t.Fatalf("ttl = %v", c.SessionTTL())
	}
}

func TestSaveLoadAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &config.Global{
		DatasetPath:      "/data/reviews.csv",
		Delimiter:        "semicolon",
		DecimalSeparator: "comma",
		PreviewRows:      8,
		ListenAddr:       ":9000",
		SessionTTLMin:    5,
		MaxSessions:      10,
		LogLevel:         "debug",
		LogFormat:        "json",
	}
	if err := config.Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DatasetPath != in.DatasetPath || c.PreviewRows != 8 || c.ListenAddr != ":9000" || c.LogFormat != "json" {
		t.Fatalf("round trip = %+v", c)
	}
	if c.SessionTTL() != 5*time.Minute {
		t.Fatalf("ttl = %v", c.SessionTTL())
	}
	opt, err := c.DatasetOptions()
	if err != nil {
		t.Fatalf("DatasetOptions: %v", err)
	}
	if opt.Delimiter != ';' || opt.DecimalSeparator != ',' {
		t.Fatalf("options = %+v", opt)
	}

	t.Setenv("REVIEWLENS_PREVIEW_ROWS", "3")
	c, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if c.PreviewRows != 3 {
		t.Fatalf("env override ignored: %d", c.PreviewRows)
	}
}

func TestDatasetOptionsRejectsUnknown(t *testing.T) {
	c := &config.Global{Delimiter: "pipe"}
	if _, err := c.DatasetOptions(); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}
