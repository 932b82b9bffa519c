package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" || cfg.MaxMB != 10 || cfg.Service != "loser-pays" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Pretty || cfg.File != "" || cfg.SampleEvery != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOG_FILE", "/tmp/loser-pays.log")
	t.Setenv("LOG_MAX_MB", "3")
	t.Setenv("LOG_SERVICE", "dumb-bot")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || !cfg.Pretty || cfg.File != "/tmp/loser-pays.log" || cfg.MaxMB != 3 || cfg.Service != "dumb-bot" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadLogRejectsBadNumbers(t *testing.T) {
	t.Setenv("LOG_MAX_MB", "lots")
	if _, err := LoadLog(); err == nil {
		t.Fatal("expected parse error for LOG_MAX_MB")
	}
}
