package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loser-pays/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFileSink(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		setWriter(os.Stdout)
	})

	path := filepath.Join(t.TempDir(), "server.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1, Service: "game-server"})

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v, want debug", zerolog.GlobalLevel())
	}
	log.Info().Str("room_id", "r1").Msg("room_joined")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"message":"room_joined"`) {
		t.Fatalf("log file missing entry: %s", b)
	}
	if !strings.Contains(string(b), `"service":"game-server"`) {
		t.Fatalf("log line missing service: %s", b)
	}
	if Writer() == os.Stdout {
		t.Fatal("Writer() should include the file sink")
	}
}

func TestInitIgnoresBadLevel(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	Init(config.LogConfig{Level: "loud"})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", zerolog.GlobalLevel())
	}
}
