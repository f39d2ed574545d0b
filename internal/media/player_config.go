package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed players.toml
var playersTOML []byte

// PlayerDefinition defines how a media player should be invoked
type PlayerDefinition struct {
	Description string                 `toml:"description"`
	Platforms   []string               `toml:"platforms"`
	Video       *PlayerMediaTypeConfig `toml:"video,omitempty"`
	Image       *PlayerMediaTypeConfig `toml:"image,omitempty"`
}

// PlayerMediaTypeConfig holds the arguments for one media type
type PlayerMediaTypeConfig struct {
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

// PlayersConfig holds all player definitions
type PlayersConfig struct {
	Players map[string]PlayerDefinition `toml:"players"`
}

// PlayerRegistry manages player definitions
type PlayerRegistry struct {
	players map[string]PlayerDefinition
}

// NewPlayerRegistry creates a registry from the embedded TOML, merged with
// the user's players.toml when present.
func NewPlayerRegistry() (*PlayerRegistry, error) {
	var config PlayersConfig
	if err := toml.Unmarshal(playersTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing players.toml: %w", err)
	}
	if config.Players == nil {
		config.Players = make(map[string]PlayerDefinition)
	}

	registry := &PlayerRegistry{
		players: config.Players,
	}

	if home, err := os.UserHomeDir(); err == nil {
		registry.loadUserConfig(filepath.Join(home, ".config", "flik", "players.toml"))
	}

	return registry, nil
}

// loadUserConfig merges definitions from path; they override built-ins.
func (r *PlayerRegistry) loadUserConfig(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var userConfig PlayersConfig
	if err := toml.Unmarshal(data, &userConfig); err != nil {
		return
	}
	for name, def := range userConfig.Players {
		r.players[name] = def
	}
}

// GetCommand builds the command for a specific player and media type
func (r *PlayerRegistry) GetCommand(playerName string, mediaType Type, url string) (*exec.Cmd, error) {
	player, exists := r.players[playerName]
	if !exists {
		return exec.Command(playerName, url), nil
	}

	supportsPlatform := false
	for _, p := range player.Platforms {
		if p == runtime.GOOS {
			supportsPlatform = true
			break
		}
	}
	if !supportsPlatform {
		return nil, fmt.Errorf("%s not supported on %s", playerName, runtime.GOOS)
	}

	var config *PlayerMediaTypeConfig
	switch mediaType {
	case TypeVideo:
		config = player.Video
	case TypeImage:
		config = player.Image
	}
	if config == nil {
		return nil, fmt.Errorf("%s doesn't support %s", playerName, mediaType)
	}

	args := append(append([]string(nil), r.getArgs(config)...), url)
	return exec.Command(playerName, args...), nil
}

// getArgs returns the appropriate args for the current platform
func (r *PlayerRegistry) getArgs(config *PlayerMediaTypeConfig) []string {
	if config == nil {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		if len(config.ArgsDarwin) > 0 {
			return config.ArgsDarwin
		}
	case "linux":
		if len(config.ArgsLinux) > 0 {
			return config.ArgsLinux
		}
	case "windows":
		if len(config.ArgsWindows) > 0 {
			return config.ArgsWindows
		}
	}

	return config.Args
}

// FindAvailablePlayer finds the first installed player from a list
func (r *PlayerRegistry) FindAvailablePlayer(players []string) string {
	for _, player := range players {
		if _, err := exec.LookPath(player); err == nil {
			return player
		}
	}
	return ""
}
