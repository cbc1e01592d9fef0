package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable of the launcher core. All environment lookups
// happen once, in FromEnvironment; nothing below this package reads os.Getenv.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Icons      IconsConfig      `toml:"icons"`
	Activation ActivationConfig `toml:"activation"`
	Host       HostConfig       `toml:"host"`
}

type DataConfig struct {
	DataDirs  []string `toml:"data_dirs"`
	IconTheme string   `toml:"icon_theme"`
}

type IconsConfig struct {
	PreferredSize   int    `toml:"preferred_size"`
	Prefer3D        bool   `toml:"prefer_3d"`
	FallbackIcon    string `toml:"fallback_icon"`
	MemoryCacheSize int    `toml:"memory_cache_size"`
	CacheDir        string `toml:"cache_dir"`
}

type ActivationConfig struct {
	Distance      float32 `toml:"distance"`
	TweenDuration float64 `toml:"tween_duration"` // seconds
}

type HostConfig struct {
	SocketPath     string  `toml:"socket_path"`
	RequestTimeout float64 `toml:"request_timeout"` // seconds
}

const cacheDirName = "protostar_icon_cache"

var DefaultConfig = Config{
	Data: DataConfig{
		DataDirs:  []string{"/usr/local/share", "/usr/share"},
		IconTheme: "hicolor",
	},
	Icons: IconsConfig{
		PreferredSize:   128,
		Prefer3D:        true,
		FallbackIcon:    "image-missing",
		MemoryCacheSize: 200,
		CacheDir:        "~/.cache/" + cacheDirName,
	},
	Activation: ActivationConfig{
		Distance:      0.5,
		TweenDuration: 0.25,
	},
	Host: HostConfig{
		SocketPath:     "/tmp/protostar_host_socket",
		RequestTimeout: 5.0,
	},
}

// FromEnvironment builds the effective defaults from the XDG environment:
// XDG_DATA_DIRS plus the user's local share directory, XDG_ICON_THEME, and
// the icon cache root under XDG_CACHE_HOME.
func FromEnvironment() Config {
	cfg := DefaultConfig

	var dataDirs []string
	if dirs := os.Getenv("XDG_DATA_DIRS"); dirs != "" {
		for _, dir := range strings.Split(dirs, ":") {
			if dir != "" {
				dataDirs = append(dataDirs, dir)
			}
		}
	} else {
		dataDirs = append(dataDirs, "/usr/local/share", "/usr/share")
	}
	if home := homeDir(); home != "" {
		dataDirs = append(dataDirs, filepath.Join(home, ".local", "share"))
	}
	cfg.Data.DataDirs = dataDirs

	if theme := os.Getenv("XDG_ICON_THEME"); theme != "" {
		cfg.Data.IconTheme = theme
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(homeDir(), ".cache")
	}
	cfg.Icons.CacheDir = filepath.Join(cacheHome, cacheDirName)

	return cfg
}

// LoadConfig reads a TOML config file over the environment defaults. A
// missing file is not an error; the defaults are returned as-is.
func LoadConfig(path string) (*Config, error) {
	cfg := FromEnvironment()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return &cfg, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Icons.CacheDir = expandPath(cfg.Icons.CacheDir)
	cfg.Host.SocketPath = expandPath(cfg.Host.SocketPath)
	for i, dir := range cfg.Data.DataDirs {
		cfg.Data.DataDirs[i] = expandPath(dir)
	}

	return &cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateIcons(); err != nil {
		return err
	}
	if err := c.validateActivation(); err != nil {
		return err
	}
	return c.validateHost()
}

func (c *Config) validateData() error {
	if len(c.Data.DataDirs) == 0 {
		return fmt.Errorf("data: at least one data directory is required")
	}
	if c.Data.IconTheme == "" {
		return fmt.Errorf("data: icon_theme must not be empty")
	}
	return nil
}

func (c *Config) validateIcons() error {
	if c.Icons.PreferredSize < 16 || c.Icons.PreferredSize > 1024 {
		return fmt.Errorf("icons: preferred_size %d out of range [16, 1024]", c.Icons.PreferredSize)
	}
	if c.Icons.MemoryCacheSize <= 0 {
		return fmt.Errorf("icons: memory_cache_size must be positive")
	}
	if c.Icons.CacheDir == "" {
		return fmt.Errorf("icons: cache_dir must not be empty")
	}
	return nil
}

func (c *Config) validateActivation() error {
	if c.Activation.Distance <= 0 {
		return fmt.Errorf("activation: distance must be positive, got %f", c.Activation.Distance)
	}
	if c.Activation.TweenDuration <= 0 {
		return fmt.Errorf("activation: tween_duration must be positive, got %f", c.Activation.TweenDuration)
	}
	return nil
}

func (c *Config) validateHost() error {
	if c.Host.SocketPath == "" {
		return fmt.Errorf("host: socket_path must not be empty")
	}
	if c.Host.RequestTimeout <= 0 {
		return fmt.Errorf("host: request_timeout must be positive, got %f", c.Host.RequestTimeout)
	}
	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	usr, err := user.Current()
	if err == nil {
		return usr.HomeDir
	}
	return ""
}
