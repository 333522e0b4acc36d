package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf})

	log.Debug().Msg("should not appear")
	log.Info().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatal("expected debug message to be filtered at info level")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatal("expected info message to be logged")
	}
}

func TestNewHonorsExplicitDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf})

	log.Debug().Msg("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Fatal("expected debug line to be logged at debug level")
	}
}

func TestNewDisabledLevelSuppressesAllOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "disabled", Output: &buf})

	log.Error().Msg("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at disabled level, got %q", buf.String())
	}
}

func TestNewFallsBackToEnvironmentLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	log := New(Config{Output: &buf})

	log.Info().Msg("should not appear")
	log.Warn().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatal("expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatal("expected warn message to be logged")
	}
}
