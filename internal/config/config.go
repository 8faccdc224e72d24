package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the app runtime configuration. Values come from defaults, then
// an optional YAML file, then HABITQUEST_* environment overrides, in that
// order.
type Config struct {
	DBPath               string `yaml:"dbPath"`
	ActivityPath         string `yaml:"activityPath"`
	DesktopNotifications bool   `yaml:"desktopNotifications"`
	SchedulerBuffer      int    `yaml:"schedulerBuffer"`
	Debug                bool   `yaml:"debug"`
}

func Default() Config {
	dir := dataDir()
	return Config{
		DBPath:               filepath.Join(dir, "habitquest.db"),
		ActivityPath:         filepath.Join(dir, "activity.json"),
		DesktopNotifications: true,
		SchedulerBuffer:      64,
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".habitquest"
	}
	return filepath.Join(home, ".habitquest")
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FromEnv(cfg), nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return FromEnv(cfg), nil
}

// FromEnv applies HABITQUEST_* environment overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("HABITQUEST_DB")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("HABITQUEST_ACTIVITY_FILE")); v != "" {
		cfg.ActivityPath = v
	}
	if v, ok := getEnvBool("HABITQUEST_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("HABITQUEST_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("HABITQUEST_DEBUG"); ok {
		cfg.Debug = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
