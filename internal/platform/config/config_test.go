package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_missing_file(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}

func TestLoad_reads_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CONFIG_TEST_LOADED=yes\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_TEST_LOADED", "")
	os.Unsetenv("CONFIG_TEST_LOADED")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("CONFIG_TEST_LOADED"); got != "yes" {
		t.Errorf("expected yes, got %q", got)
	}
}

func TestGetEnv_aliases(t *testing.T) {
	t.Setenv("CONFIG_TEST_PRIMARY", "")
	t.Setenv("CONFIG_TEST_ALIAS", "alias")

	if got := GetEnv("CONFIG_TEST_PRIMARY", "fallback", "CONFIG_TEST_ALIAS"); got != "alias" {
		t.Errorf("expected alias, got %q", got)
	}
	t.Setenv("CONFIG_TEST_PRIMARY", "primary")
	if got := GetEnv("CONFIG_TEST_PRIMARY", "fallback", "CONFIG_TEST_ALIAS"); got != "primary" {
		t.Errorf("expected primary, got %q", got)
	}
	if got := GetEnv("CONFIG_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CONFIG_TEST_INT", "42")
	if got := GetEnvInt("CONFIG_TEST_INT", 1); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	t.Setenv("CONFIG_TEST_INT", "nope")
	if got := GetEnvInt("CONFIG_TEST_INT", 1); got != 1 {
		t.Errorf("invalid value should fall back, got %d", got)
	}
	t.Setenv("CONFIG_TEST_INT64", "8388608")
	if got := GetEnvInt64("CONFIG_TEST_INT64", 0); got != 8<<20 {
		t.Errorf("expected 8388608, got %d", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("CONFIG_TEST_DUR", "15s")
	if got := GetEnvDuration("CONFIG_TEST_DUR", time.Second); got != 15*time.Second {
		t.Errorf("expected 15s, got %s", got)
	}
	t.Setenv("CONFIG_TEST_DUR", "0")
	if got := GetEnvDuration("CONFIG_TEST_DUR", time.Second); got != 0 {
		t.Errorf("expected 0, got %s", got)
	}
	t.Setenv("CONFIG_TEST_DUR", "soon")
	if got := GetEnvDuration("CONFIG_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("invalid value should fall back, got %s", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" stun:a:1, ,stun:b:2 ,")
	if len(got) != 2 || got[0] != "stun:a:1" || got[1] != "stun:b:2" {
		t.Errorf("SplitList: got %q", got)
	}
	if SplitList("  ") != nil {
		t.Error("blank value should give nil")
	}
}
