package media

import (
	_ "embed"
	"fmt"
	"net/url"
	"path"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

// Type is the kind of media behind a URL.
type Type int

const (
	TypeVideo Type = iota
	TypeImage
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypeVideo:
		return "video"
	case TypeImage:
		return "image"
	default:
		return "unknown"
	}
}

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Video     TypeConfig                `toml:"video"`
	Image     TypeConfig                `toml:"image"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

// TypeDetector classifies URLs by extension and known host patterns.
type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing media_types.toml: %w", err)
	}

	return &TypeDetector{config: &config}, nil
}

func (d *TypeDetector) DetectType(rawURL string) Type {
	lower := strings.ToLower(strings.TrimSpace(rawURL))

	ext := ""
	if u, err := url.Parse(lower); err == nil {
		ext = strings.TrimPrefix(path.Ext(u.Path), ".")
	}

	if ext != "" {
		if contains(d.config.Video.Extensions, ext) {
			return TypeVideo
		}
		if contains(d.config.Image.Extensions, ext) {
			return TypeImage
		}
	}

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if matchesPattern(lower, d.config.Video.URLPatterns) {
			return TypeVideo
		}
		if matchesPattern(lower, d.config.Image.URLPatterns) {
			return TypeImage
		}
	}

	return TypeUnknown
}

func (d *TypeDetector) GetDefaultOpener() string {
	if platformConfig, ok := d.config.Platforms[runtime.GOOS]; ok {
		return platformConfig.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok {
		return fallback.DefaultOpener
	}
	return "open"
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func matchesPattern(u string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(u, pattern) {
			return true
		}
	}
	return false
}
