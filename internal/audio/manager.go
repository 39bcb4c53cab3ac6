package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/croutonhq/crouton/internal/config"
	"github.com/croutonhq/crouton/internal/toast"
)

// Manager plays the configured sound when a notification of a given kind
// is shown. It is wired into the engine as a show listener.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player
	cfg    *config.Config
	sounds map[toast.Kind]string
}

// NewManager creates an audio manager from the configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		player: NewPlayer(logger),
		cfg:    cfg,
		sounds: make(map[toast.Kind]string),
	}
	m.loadSounds()
	return m
}

func (m *Manager) loadSounds() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Audio.Volume > 0 {
		m.player.SetVolume(float64(m.cfg.Audio.Volume) / 100.0)
	}

	m.sounds = make(map[toast.Kind]string)
	for kind, name := range toast.KindNames {
		path := expandHome(m.cfg.SoundForKind(name))
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "kind", name, "path", path)
			continue
		}
		m.sounds[kind] = path
	}
}

// Preload decodes all configured sounds so first playback is not delayed.
func (m *Manager) Preload() {
	m.mu.RLock()
	sounds := make([]string, 0, len(m.sounds))
	for _, path := range m.sounds {
		sounds = append(sounds, path)
	}
	m.mu.RUnlock()

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

// OnShow is the engine show listener: it plays the sound for the
// notification's kind, if one is configured and audio is enabled.
func (m *Manager) OnShow(n *toast.Notification) {
	m.mu.RLock()
	enabled := m.cfg.Audio.Enabled
	path, ok := m.sounds[n.Kind()]
	m.mu.RUnlock()

	if !enabled || !ok {
		return
	}
	if err := m.player.Play(path); err != nil {
		m.logger.Warn("failed to play notification sound", "kind", n.Kind().String(), "error", err)
	}
}

// UpdateConfig swaps in a hot-reloaded configuration and reloads sounds.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.loadSounds()
	m.logger.Debug("audio manager config updated")
}

// Close releases playback resources.
func (m *Manager) Close() {
	m.player.Close()
}
