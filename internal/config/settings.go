// Package config provides configuration file parsing for startupmgr.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvHome overrides the config directory when set.
const EnvHome = "STARTUPMGR_HOME"

// Dir returns the startupmgr config directory. A non-empty override wins,
// then STARTUPMGR_HOME, then <user config dir>/startupmgr.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "startupmgr"), nil
}

// Settings holds the values read from {dir}/settings. Paths are absolute
// once LoadSettings returns.
type Settings struct {
	Dir                string
	BackupDir          string
	DBPath             string
	StashDir           string
	UserStartupDir     string
	CommonStartupDir   string
	LogLevel           string
	Sequential         bool
	PublisherCacheSize int
}

// Defaults returns the settings used when no settings file exists.
func Defaults(dir string) *Settings {
	return &Settings{
		Dir:       dir,
		BackupDir: filepath.Join(dir, "backups"),
		DBPath:    filepath.Join(dir, "startupmgr.db"),
		StashDir:  filepath.Join(dir, "disabled"),
		LogLevel:  "warn",
	}
}

// LoadSettings reads the settings file at {dir}/settings. If the file does
// not exist, defaults are returned without an error. Malformed lines and
// unknown keys are skipped.
func LoadSettings(dir string) (*Settings, error) {
	s := Defaults(dir)

	path := filepath.Join(dir, "settings")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}

		s.set(key, value)
	}

	if err := scanner.Err(); err != nil {
		return s, err
	}

	return s, nil
}

func (s *Settings) set(key, value string) {
	switch key {
	case "backup_dir":
		s.BackupDir = s.resolve(value)
	case "db_path":
		s.DBPath = s.resolve(value)
	case "stash_dir":
		s.StashDir = s.resolve(value)
	case "user_startup_dir":
		s.UserStartupDir = s.resolve(value)
	case "common_startup_dir":
		s.CommonStartupDir = s.resolve(value)
	case "log_level":
		s.LogLevel = value
	case "sequential":
		if b, err := strconv.ParseBool(value); err == nil {
			s.Sequential = b
		}
	case "publisher_cache_size":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			s.PublisherCacheSize = n
		}
	}
}

// resolve makes relative paths relative to the config directory.
func (s *Settings) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}
