package config

import (
	"log/slog"
	"os"
	"testing"
)

var envVars = []string{
	"AMBIENT_OUTPUT", "AMBIENT_SAMPLE_RATE", "AMBIENT_BUFFER_SIZE",
	"AMBIENT_ANALYSER_SIZE", "AMBIENT_SEED", "AMBIENT_PORT", "AMBIENT_LOG_LEVEL",
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Output != "portaudio" {
		t.Errorf("Output = %q, want portaudio", cfg.Output)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.SampleRate)
	}
	if cfg.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, want 1024", cfg.BufferSize)
	}
	if cfg.AnalyserSize != 256 {
		t.Errorf("AnalyserSize = %d, want 256", cfg.AnalyserSize)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMBIENT_OUTPUT", "oto")
	t.Setenv("AMBIENT_SAMPLE_RATE", "44100")
	t.Setenv("AMBIENT_BUFFER_SIZE", "512")
	t.Setenv("AMBIENT_ANALYSER_SIZE", "1024")
	t.Setenv("AMBIENT_SEED", "42")
	t.Setenv("AMBIENT_PORT", "3000")
	t.Setenv("AMBIENT_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Output != "oto" {
		t.Errorf("Output = %q, want oto", cfg.Output)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %v, want 44100", cfg.SampleRate)
	}
	if cfg.BufferSize != 512 {
		t.Errorf("BufferSize = %d, want 512", cfg.BufferSize)
	}
	if cfg.AnalyserSize != 1024 {
		t.Errorf("AnalyserSize = %d, want 1024", cfg.AnalyserSize)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("AMBIENT_PORT", "not-a-number")
	t.Setenv("AMBIENT_SAMPLE_RATE", "fast")
	t.Setenv("AMBIENT_LOG_LEVEL", "chatty")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Port)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want fallback 48000", cfg.SampleRate)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want fallback INFO", cfg.LogLevel)
	}
}
