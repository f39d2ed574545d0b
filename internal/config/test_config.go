package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.YouTube.Key = "test-youtube-key"
	cfg.API.HTTPTimeout = 5 * time.Second
	cfg.API.UserAgent = "flik-test/1.0"
	cfg.API.RequestsPerSecond = 0 // unlimited
	cfg.Search.Debounce = 10 * time.Millisecond
	cfg.Database.Path = ":memory:"
	cfg.Log.Level = "off"
	return cfg
}
