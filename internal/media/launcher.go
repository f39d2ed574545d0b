package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/flik/internal/config"
	"github.com/pders01/flik/internal/debuglog"
)

// ErrNoURL is returned when there is nothing to open.
var ErrNoURL = errors.New("nothing to open")

// Launcher opens watch URLs and images in external applications. It is the
// terminal stand-in for an embedded player.
type Launcher struct {
	videoPlayer   string
	imageViewer   string
	defaultOpener string
	registry      *PlayerRegistry
	detector      *TypeDetector
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewPlayerRegistry()
	if err != nil {
		debuglog.Warnf("player definitions unavailable: %v", err)
		registry = &PlayerRegistry{players: make(map[string]PlayerDefinition)}
	}

	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media types unavailable: %v", err)
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	l := &Launcher{
		defaultOpener: defaultOpener,
		registry:      registry,
		detector:      detector,
		start:         startDetached,
	}

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "linux":
		players = cfg.Media.Linux
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Darwin
	}

	l.videoPlayer = registry.FindAvailablePlayer(players.Video)
	l.imageViewer = registry.FindAvailablePlayer(players.Image)
	if l.videoPlayer == "" {
		l.videoPlayer = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

// Open starts the application for url's media type without waiting for it.
func (l *Launcher) Open(url string) error {
	if url == "" {
		return ErrNoURL
	}

	mediaType := l.detector.DetectType(url)

	var playerName string
	switch mediaType {
	case TypeVideo:
		playerName = l.videoPlayer
	case TypeImage:
		playerName = l.imageViewer
	default:
		playerName = l.defaultOpener
	}
	if playerName == "" {
		playerName = l.detector.GetDefaultOpener()
	}
	if playerName == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd, err := l.registry.GetCommand(playerName, mediaType, url)
	if err != nil {
		cmd = exec.Command(playerName, url)
	}

	debuglog.WithFields(map[string]interface{}{"player": playerName, "type": mediaType.String()}).
		Infof("opening %s", url)

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", playerName, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
