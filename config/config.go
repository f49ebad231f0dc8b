package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Audio
	Output       string // portaudio, oto or null
	SampleRate   float64
	BufferSize   int // frames per device callback
	AnalyserSize int // samples in the analysis window

	// Seed for every random decision; 0 means seed from the clock.
	Seed int64

	// Server
	Port int

	LogLevel slog.Level
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Output:       envStr("AMBIENT_OUTPUT", "portaudio"),
		SampleRate:   envFloat("AMBIENT_SAMPLE_RATE", 48000),
		BufferSize:   envInt("AMBIENT_BUFFER_SIZE", 1024),
		AnalyserSize: envInt("AMBIENT_ANALYSER_SIZE", 256),
		Seed:         int64(envInt("AMBIENT_SEED", 0)),
		Port:         envInt("AMBIENT_PORT", 8080),
		LogLevel:     envLevel("AMBIENT_LOG_LEVEL", slog.LevelInfo),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			return l
		}
	}
	return fallback
}
