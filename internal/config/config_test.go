package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	got := Default()
	want := DefaultDodgeConfig()

	if got != want {
		t.Errorf("embedded defaults differ from DefaultDodgeConfig():\n got %+v\nwant %+v", got, want)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultDodgeConfig()

	if cfg.Motion.SpawnEvery() != 3*time.Second {
		t.Errorf("SpawnEvery() = %v, expected 3s", cfg.Motion.SpawnEvery())
	}
	if cfg.Motion.MotionEvery() != 500*time.Millisecond {
		t.Errorf("MotionEvery() = %v, expected 500ms", cfg.Motion.MotionEvery())
	}
	if cfg.Collision.EffectDuration() != 900*time.Millisecond {
		t.Errorf("EffectDuration() = %v, expected 900ms", cfg.Collision.EffectDuration())
	}
	if cfg.Server.IdleTimeout() != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, expected 30m", cfg.Server.IdleTimeout())
	}
}

func TestLoadPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dodge.yaml")
	data := "rules:\n  multiplier: 2\nbackend:\n  hood: Queens\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Rules.Multiplier != 2 {
		t.Errorf("Multiplier = %d, expected 2", cfg.Rules.Multiplier)
	}
	if cfg.Backend.Hood != "Queens" {
		t.Errorf("Hood = %q, expected Queens", cfg.Backend.Hood)
	}
	if cfg.Rules.Lives != 3 {
		t.Errorf("unspecified keys should keep defaults, Lives = %d", cfg.Rules.Lives)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dodge.toml")
	data := "[motion]\nspawn_every_ms = 1500\n\n[server]\naddr = \":9090\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Motion.SpawnEveryMS != 1500 {
		t.Errorf("SpawnEveryMS = %d, expected 1500", cfg.Motion.SpawnEveryMS)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, expected :9090", cfg.Server.Addr)
	}
	if cfg.Motion.Step != 47.5 {
		t.Errorf("Step = %v, expected default 47.5", cfg.Motion.Step)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing custom path")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "rules:\n  multiplier: 0\n  lives: 0\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should reject invalid values")
	}
	if !strings.Contains(err.Error(), "rules.multiplier") || !strings.Contains(err.Error(), "rules.lives") {
		t.Errorf("error should name every invalid key, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	got, err := ExpandHome("/tmp/x.db")
	if err != nil || got != "/tmp/x.db" {
		t.Errorf("ExpandHome(abs) = %q, %v", got, err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err = ExpandHome("~/.spacedodge/x.db")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, ".spacedodge", "x.db") {
		t.Errorf("ExpandHome(~) = %q", got)
	}
}
