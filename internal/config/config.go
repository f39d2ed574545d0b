package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pders01/flik/internal/validation"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is wrapped by the ConfigurationError returned when no
// YouTube API key is available.
var ErrMissingAPIKey = errors.New("missing API key")

// ConfigurationError reports a config value that prevents startup.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Search   SearchConfig   `mapstructure:"search"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
}

type APIConfig struct {
	YouTube           YouTubeConfig `mapstructure:"youtube"`
	TMDB              TMDBConfig    `mapstructure:"tmdb"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type YouTubeConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Key      string `mapstructure:"key"`
	EmbedURL string `mapstructure:"embed_url"`
	WatchURL string `mapstructure:"watch_url"`
	FeedURL  string `mapstructure:"feed_url"`
}

type TMDBConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Key          string `mapstructure:"key"`
	ImageBaseURL string `mapstructure:"image_base_url"`
}

type SearchConfig struct {
	DefaultQuery   string        `mapstructure:"default_query"`
	MaxResults     int           `mapstructure:"max_results"`
	Debounce       time.Duration `mapstructure:"debounce"`
	VideoDuration  string        `mapstructure:"video_duration"`
	ChannelUploads int           `mapstructure:"channel_uploads"`
	Fallback       bool          `mapstructure:"fallback"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type UIConfig struct {
	Colors UIColors     `mapstructure:"colors"`
	Detail DetailConfig `mapstructure:"detail"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Video []string `mapstructure:"video"`
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Open      string `mapstructure:"open"`
	Retry     string `mapstructure:"retry"`
	Bookmark  string `mapstructure:"bookmark"`
	Watchlist string `mapstructure:"watchlist"`
	Remove    string `mapstructure:"remove"`
	Back      string `mapstructure:"back"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			YouTube: YouTubeConfig{
				BaseURL:  "https://www.googleapis.com/youtube/v3",
				EmbedURL: "https://www.youtube.com/embed/",
				WatchURL: "https://www.youtube.com/watch?v=",
				FeedURL:  "https://www.youtube.com/feeds/videos.xml",
			},
			TMDB: TMDBConfig{
				BaseURL:      "https://api.themoviedb.org/3",
				ImageBaseURL: "https://image.tmdb.org/t/p/w500/",
			},
			HTTPTimeout:       15 * time.Second,
			UserAgent:         "flik/1.0 (https://github.com/pders01/flik)",
			RequestsPerSecond: 5,
		},
		Search: SearchConfig{
			DefaultQuery:   "full movie free",
			MaxResults:     20,
			Debounce:       2000 * time.Millisecond,
			VideoDuration:  "long",
			ChannelUploads: 5,
			Fallback:       true,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".flik.db"),
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(homeDir, ".flik", "flik.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				MaxDescriptionLength: 2000,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
		},
		Media: MediaConfig{
			Darwin: MediaPlayers{
				Video: []string{"iina", "mpv", "vlc"},
				Image: []string{"preview", "open"},
			},
			Linux: MediaPlayers{
				Video: []string{"mpv", "vlc", "mplayer"},
				Image: []string{"sxiv", "feh", "eog", "xdg-open"},
			},
			Windows: MediaPlayers{
				Video: []string{"mpv", "vlc"},
				Image: []string{"start"},
			},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Open:      "o",
				Retry:     "r",
				Bookmark:  "b",
				Watchlist: "w",
				Remove:    "x",
				Back:      "esc",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// setDefaults registers every leaf so env overrides reach Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.youtube.base_url", cfg.API.YouTube.BaseURL)
	v.SetDefault("api.youtube.key", cfg.API.YouTube.Key)
	v.SetDefault("api.youtube.embed_url", cfg.API.YouTube.EmbedURL)
	v.SetDefault("api.youtube.watch_url", cfg.API.YouTube.WatchURL)
	v.SetDefault("api.youtube.feed_url", cfg.API.YouTube.FeedURL)
	v.SetDefault("api.tmdb.base_url", cfg.API.TMDB.BaseURL)
	v.SetDefault("api.tmdb.key", cfg.API.TMDB.Key)
	v.SetDefault("api.tmdb.image_base_url", cfg.API.TMDB.ImageBaseURL)
	v.SetDefault("api.http_timeout", cfg.API.HTTPTimeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.requests_per_second", cfg.API.RequestsPerSecond)

	v.SetDefault("search.default_query", cfg.Search.DefaultQuery)
	v.SetDefault("search.max_results", cfg.Search.MaxResults)
	v.SetDefault("search.debounce", cfg.Search.Debounce)
	v.SetDefault("search.video_duration", cfg.Search.VideoDuration)
	v.SetDefault("search.channel_uploads", cfg.Search.ChannelUploads)
	v.SetDefault("search.fallback", cfg.Search.Fallback)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)

	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "flik")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FLIK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names most people already have exported.
	_ = v.BindEnv("api.youtube.key", "FLIK_YOUTUBE_API_KEY", "FLIK_API_YOUTUBE_KEY", "YOUTUBE_API_KEY")
	_ = v.BindEnv("api.tmdb.key", "FLIK_TMDB_API_KEY", "FLIK_API_TMDB_KEY", "TMDB_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// Validate checks the values the fetch path depends on. It is called once
// at startup; the config is treated as immutable afterwards.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.YouTube.Key) == "" {
		return &ConfigurationError{Key: "api.youtube.key", Err: ErrMissingAPIKey}
	}

	endpoints := map[string]string{
		"api.youtube.base_url": c.API.YouTube.BaseURL,
		"api.youtube.feed_url": c.API.YouTube.FeedURL,
	}
	if c.TMDBEnabled() {
		endpoints["api.tmdb.base_url"] = c.API.TMDB.BaseURL
	}
	validator := validation.NewEndpointValidator()
	for key, endpoint := range endpoints {
		if _, err := validator.ValidateAndNormalize(endpoint); err != nil {
			return &ConfigurationError{Key: key, Err: err}
		}
	}

	if c.Search.MaxResults < 1 || c.Search.MaxResults > 50 {
		return &ConfigurationError{Key: "search.max_results", Err: fmt.Errorf("must be between 1 and 50, got %d", c.Search.MaxResults)}
	}
	if c.Search.Debounce < 0 {
		return &ConfigurationError{Key: "search.debounce", Err: fmt.Errorf("must not be negative")}
	}
	if c.API.HTTPTimeout <= 0 {
		return &ConfigurationError{Key: "api.http_timeout", Err: fmt.Errorf("must be positive")}
	}

	return nil
}

// TMDBEnabled reports whether the secondary provider can be used.
func (c *Config) TMDBEnabled() bool {
	return c.Search.Fallback && strings.TrimSpace(c.API.TMDB.Key) != ""
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Save writes cfg as TOML. API keys are never written; they belong in the
// environment.
func Save(config *Config, path string) error {
	v := viper.New()

	apiCfg := map[string]interface{}{
		"youtube": map[string]interface{}{
			"base_url":  config.API.YouTube.BaseURL,
			"embed_url": config.API.YouTube.EmbedURL,
			"watch_url": config.API.YouTube.WatchURL,
			"feed_url":  config.API.YouTube.FeedURL,
		},
		"tmdb": map[string]interface{}{
			"base_url":       config.API.TMDB.BaseURL,
			"image_base_url": config.API.TMDB.ImageBaseURL,
		},
		"http_timeout":        config.API.HTTPTimeout.String(),
		"user_agent":          config.API.UserAgent,
		"requests_per_second": config.API.RequestsPerSecond,
	}

	searchCfg := map[string]interface{}{
		"default_query":   config.Search.DefaultQuery,
		"max_results":     config.Search.MaxResults,
		"debounce":        config.Search.Debounce.String(),
		"video_duration":  config.Search.VideoDuration,
		"channel_uploads": config.Search.ChannelUploads,
		"fallback":        config.Search.Fallback,
	}

	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}

	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	v.Set("api", apiCfg)
	v.Set("search", searchCfg)
	v.Set("database", dbCfg)
	v.Set("log", logCfg)
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
