// Package config loads host-level emulator defaults (ROM directory, audio
// sample rate, display scale) from a .env file, falling back to process
// environment variables and then hardcoded defaults. This is host
// configuration only — it has no bearing on emulated hardware state.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds host defaults that cmd/emulator falls back to when a flag
// is not explicitly set.
type Config struct {
	ROMDir      string
	SampleRate  int
	ScaleFactor int
	FastForward float64
}

// Default matches the values cmd/emulator already hardcodes when no .env
// or environment override is present.
func Default() Config {
	return Config{
		ROMDir:      ".",
		SampleRate:  44100,
		ScaleFactor: 3,
		FastForward: 1.0,
	}
}

// Load reads a .env file from the working directory if present (a missing
// file is not an error) and layers environment variables over the defaults.
func Load() (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: no .env file found, using environment/defaults")
	}

	cfg.ROMDir = getEnv("GAMEBOY_ROM_DIR", cfg.ROMDir)
	cfg.SampleRate = getEnvInt("GAMEBOY_SAMPLE_RATE", cfg.SampleRate)
	cfg.ScaleFactor = getEnvInt("GAMEBOY_SCALE", cfg.ScaleFactor)
	cfg.FastForward = getEnvFloat("GAMEBOY_SPEED", cfg.FastForward)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
