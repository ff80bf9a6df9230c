package nchorder

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/nchorder/nchorder/internal/ini"
)

const defaultConfigPath = "/etc/nchorder/CONFIG.INI"

var (
	configMu   sync.RWMutex
	config     = ini.Defaults()
	configPath = defaultConfigPath
)

// CurrentSettings returns a copy of the active settings.
func CurrentSettings() ini.Settings {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}

// LoadConfig reads CONFIG.INI from path. A missing file is not an
// error: a default file is written in its place and the defaults
// stay active, matching first-boot behavior.
func LoadConfig(path string) error {
	configPath = path
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		rootLogger.Info().Str("path", path).Msg("no config file, writing defaults")
		return writeDefaultConfig(path)
	}
	if err != nil {
		return err
	}
	applyConfig(data)
	return nil
}

func applyConfig(data []byte) {
	s := ini.Defaults()
	n := ini.Parse(data, &s)
	configMu.Lock()
	config = s
	configMu.Unlock()
	rootLogger.Info().Int("keys", n).Msg("config applied")
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, ini.GenerateDefault(), 0o644)
}

// WatchConfig re-reads the config file whenever it changes on disk.
// Editors and scp replace the file rather than writing in place, so
// Create events are treated the same as Write events.
func WatchConfig(path string, onChange func(ini.Settings)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					watcherLogger.Warn().Err(err).Msg("config changed but unreadable")
					continue
				}
				watcherLogger.Info().Str("path", path).Msg("config file changed, reloading")
				applyConfig(data)
				if onChange != nil {
					onChange(CurrentSettings())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				watcherLogger.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()
	return watcher, nil
}
