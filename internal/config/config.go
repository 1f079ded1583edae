package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr           string `yaml:"addr"`
		Password       string `yaml:"password"`
		DB             int    `yaml:"db"`
		LeaderboardKey string `yaml:"leaderboardKey"`
		ResultsKey     string `yaml:"resultsKey"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Sqlite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Bank struct {
		Path string `yaml:"path"`
		ID   string `yaml:"id"`
		TTL  string `yaml:"ttl"`
	} `yaml:"bank"`
	Quiz struct {
		TrapCount      int      `yaml:"trapCount"`
		MaxPerCategory int      `yaml:"maxPerCategory"`
		Placement      string   `yaml:"placement"`
		FixedSlots     []int    `yaml:"fixedSlots"`
		ThemeHints     []string `yaml:"themeHints"`
	} `yaml:"quiz"`
	Trap struct {
		MaxAttempts    int    `yaml:"maxAttempts"`
		AttemptTimeout string `yaml:"attemptTimeout"`
		Prompt         string `yaml:"prompt"`
		PadOptions     bool   `yaml:"padOptions"`
	} `yaml:"trap"`
	OpenAI struct {
		Model string `yaml:"model"`
	} `yaml:"openai"`
	Scan struct {
		Model           string `yaml:"model"`
		LanguageToolURL string `yaml:"languageToolUrl"`
		Language        string `yaml:"language"`
		Prompt          string `yaml:"prompt"`
	} `yaml:"scan"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
