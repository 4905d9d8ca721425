// Package config loads node configuration from YAML with environment
// overrides. Missing files are not an error; defaults always produce a
// runnable configuration.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Relay   RelayConfig
	Inbound InboundConfig
}

type RelayConfig struct {
	BaseURL        string
	PollWait       time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

type InboundConfig struct {
	FreshnessWindow time.Duration
	ReplayRetention time.Duration
	SenderRPS       float64
	SenderBurst     int
}

// fileConfig is the YAML schema. Durations are Go duration strings
// ("90s", "5m"); yaml.v3 has no native time.Duration decoding.
type fileConfig struct {
	Relay struct {
		BaseURL        string `yaml:"baseUrl"`
		PollWait       string `yaml:"pollWait"`
		PollInterval   string `yaml:"pollInterval"`
		RequestTimeout string `yaml:"requestTimeout"`
	} `yaml:"relay"`
	Inbound struct {
		FreshnessWindow string  `yaml:"freshnessWindow"`
		ReplayRetention string  `yaml:"replayRetention"`
		SenderRPS       float64 `yaml:"senderRps"`
		SenderBurst     int     `yaml:"senderBurst"`
	} `yaml:"inbound"`
}

func Default() Config {
	return Config{
		Relay: RelayConfig{
			BaseURL:        "http://127.0.0.1:8799",
			PollWait:       25 * time.Second,
			PollInterval:   time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Inbound: InboundConfig{
			FreshnessWindow: 5 * time.Minute,
			ReplayRetention: 10 * time.Minute,
			SenderRPS:       5,
			SenderBurst:     20,
		},
	}
}

// LoadFromPath reads the first readable candidate config file, merges
// it over the defaults and applies env overrides. An empty path falls
// back to the conventional locations.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/mesh.yaml",
			"mesh.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func merge(dst *Config, src fileConfig) {
	if src.Relay.BaseURL != "" {
		dst.Relay.BaseURL = src.Relay.BaseURL
	}
	mergeDuration(&dst.Relay.PollWait, src.Relay.PollWait)
	mergeDuration(&dst.Relay.PollInterval, src.Relay.PollInterval)
	mergeDuration(&dst.Relay.RequestTimeout, src.Relay.RequestTimeout)
	mergeDuration(&dst.Inbound.FreshnessWindow, src.Inbound.FreshnessWindow)
	mergeDuration(&dst.Inbound.ReplayRetention, src.Inbound.ReplayRetention)
	if src.Inbound.SenderRPS > 0 {
		dst.Inbound.SenderRPS = src.Inbound.SenderRPS
	}
	if src.Inbound.SenderBurst > 0 {
		dst.Inbound.SenderBurst = src.Inbound.SenderBurst
	}
}

func mergeDuration(dst *time.Duration, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		*dst = d
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("MESH_RELAY_URL")); v != "" {
		cfg.Relay.BaseURL = v
	}
	mergeDuration(&cfg.Inbound.FreshnessWindow, os.Getenv("MESH_FRESHNESS_WINDOW"))
	mergeDuration(&cfg.Inbound.ReplayRetention, os.Getenv("MESH_REPLAY_RETENTION"))
	if v := strings.TrimSpace(os.Getenv("MESH_SENDER_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Inbound.SenderRPS = f
		}
	}
}
