package config

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kelseyhightower/envconfig"
)

const dirsrc = "~/.config/access-launcher/dirs.rc"

var (
	globalConfig *config
	once         sync.Once
)

type config struct {
	static  env
	dynamic rc
	watcher *fsnotify.Watcher
}

type (
	env struct {
		DataHome       string `envconfig:"XDG_DATA_HOME"`
		DataDirs       string `envconfig:"XDG_DATA_DIRS"`
		CurrentDesktop string `envconfig:"XDG_CURRENT_DESKTOP"`
		NixProfiles    string `envconfig:"NIX_PROFILES"`
		Terminal       string `envconfig:"ACCESS_LAUNCHER_TERM"`
		UnixSocket     string `envconfig:"ACCESS_LAUNCHER_SOCK"`
		ListLimit      int    `envconfig:"ACCESS_LAUNCHER_LIST_LIMIT" default:"128"`
	}
	rc struct {
		sync.RWMutex
		additionalDirs []string
	}
)

// Init initializes and loads configuration
func Init() error {
	var err error
	once.Do(func() {
		globalConfig = &config{}

		// Load environment variables
		if err = envconfig.Process("", &globalConfig.static); err != nil {
			return
		}

		// Set default socket path if not provided
		if globalConfig.static.UnixSocket == "" {
			currentUser, err := user.Current()
			if err != nil {
				return
			}
			globalConfig.static.UnixSocket = fmt.Sprintf("/tmp/access-launcher-%s/ctl", currentUser.Uid)
		}

		// Expand tilde in socket path
		globalConfig.static.UnixSocket = expandPath(globalConfig.static.UnixSocket)

		// Load rc file
		if err = globalConfig.loadRC(); err != nil {
			return
		}

		// Setup file watcher
		if err = globalConfig.setupWatcher(); err != nil {
			return
		}
	})
	return err
}

// Run starts the configuration watcher loop
func Run() error {
	if globalConfig == nil {
		if err := Init(); err != nil {
			return err
		}
	}

	go globalConfig.watchLoop()
	return nil
}

// Get returns the global config instance
func Get() *config {
	if globalConfig == nil {
		Init()
	}
	return globalConfig
}

func (c *config) loadRC() error {
	rcPath := expandPath(dirsrc)

	// Create directory if it doesn't exist
	rcDir := filepath.Dir(rcPath)
	if err := os.MkdirAll(rcDir, 0750); err != nil {
		return err
	}

	// Try to read rc file
	file, err := os.Open(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty file
			file, err = os.Create(rcPath)
			if err != nil {
				return err
			}
			file.Close()
			return nil
		}
		return err
	}
	defer file.Close()

	c.dynamic.Lock()
	defer c.dynamic.Unlock()

	c.dynamic.additionalDirs = []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		expanded := expandPath(line)
		c.dynamic.additionalDirs = append(c.dynamic.additionalDirs, expanded)
	}

	return scanner.Err()
}

func (c *config) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	c.watcher = watcher
	rcPath := expandPath(dirsrc)
	rcDir := filepath.Dir(rcPath)

	// Watch the directory
	if err := watcher.Add(rcDir); err != nil {
		return err
	}

	return nil
}

func (c *config) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			rcPath := expandPath(dirsrc)
			if event.Name == rcPath && (event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create) {
				if err := c.loadRC(); err != nil {
					// Log error but continue
					fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
				}
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Config watcher error: %v\n", err)
		}
	}
}

// ApplicationDirs returns the prioritized applications directories, most
// authoritative first: user data dir, user flatpak exports, system data
// dirs, system flatpak exports, nix profiles, then any extra directories
// from the rc file. Duplicates keep their first (highest-priority)
// position. An unset variable simply contributes nothing.
func (c *config) ApplicationDirs() []string {
	var dirs []string

	home, _ := os.UserHomeDir()

	dataHome := c.static.DataHome
	if dataHome == "" && home != "" {
		dataHome = filepath.Join(home, ".local/share")
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local/share/flatpak/exports/share/applications"))
	}

	dataDirs := c.static.DataDirs
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range strings.Split(dataDirs, ":") {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	dirs = append(dirs, "/var/lib/flatpak/exports/share/applications")

	for _, profile := range strings.Fields(c.static.NixProfiles) {
		dirs = append(dirs, filepath.Join(profile, "share/applications"))
	}

	c.dynamic.RLock()
	dirs = append(dirs, c.dynamic.additionalDirs...)
	c.dynamic.RUnlock()

	// Deduplicate, keeping the first occurrence
	seen := make(map[string]struct{}, len(dirs))
	deduped := dirs[:0]
	for _, dir := range dirs {
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		deduped = append(deduped, dir)
	}
	return deduped
}

// CurrentDesktops returns the active desktop-environment identifiers from
// XDG_CURRENT_DESKTOP (colon-separated).
func (c *config) CurrentDesktops() []string {
	var desktops []string
	for _, name := range strings.Split(c.static.CurrentDesktop, ":") {
		if name != "" {
			desktops = append(desktops, name)
		}
	}
	return desktops
}

// Terminal returns the terminal emulator used to wrap Terminal=true entries
func (c *config) Terminal() string {
	if c.static.Terminal != "" {
		return c.static.Terminal
	}
	// Fallback to TERM env var
	if term := os.Getenv("TERM"); term != "" {
		return term
	}
	return "xterm" // Ultimate fallback
}

// UnixSocket returns the Unix socket path
func (c *config) UnixSocket() string {
	return c.static.UnixSocket
}

// ListLimit returns the configured list limit
func (c *config) ListLimit() int {
	if c.static.ListLimit <= 0 {
		return 128 // Default
	}
	return c.static.ListLimit
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return strings.Replace(path, "~", home, 1)
	}
	return path
}
