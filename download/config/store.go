package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DefaultFileName is the settings file name under the user's home directory.
const DefaultFileName = ".ytmusic-dl.json"

// DefaultPath returns the settings file path: YTMUSICDL_CONFIG if set,
// otherwise ~/.ytmusic-dl.json. Falls back to the working directory when the
// home directory cannot be resolved.
func DefaultPath() string {
	if p := os.Getenv("YTMUSICDL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads the configuration from path. A missing, empty, or corrupt file
// yields the default configuration; Load never fails for those cases. A
// corrupt file is preserved next to the original with a .corrupt suffix so
// the user can inspect it.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: config_read_failed path=%s error=%v, using defaults", path, err)
		}
		return cfg
	}
	if len(data) == 0 {
		log.Printf("WARN: config_empty path=%s, using defaults", path)
		return cfg
	}

	// Unmarshal over the defaults so fields absent from an older settings
	// file keep their default values.
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("WARN: config_corrupt path=%s error=%v, using defaults", path, err)
		corruptPath := path + ".corrupt"
		if writeErr := os.WriteFile(corruptPath, data, 0644); writeErr == nil {
			log.Printf("INFO: config_preserved path=%s", corruptPath)
		}
		return Default()
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		log.Printf("WARN: config_invalid path=%s error=%v, using defaults", path, err)
		return Default()
	}
	return cfg
}

// Save validates cfg and writes it to path atomically: the document is
// written to a temporary file in the same directory and renamed over the
// target, so a crash mid-write cannot corrupt the settings. The previous
// file, if any, is kept as a .backup copy.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return &ConfigError{Message: "config is nil"}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Keep a backup of the previous settings file.
	if original, err := os.ReadFile(path); err == nil {
		backupPath := path + ".backup"
		if err := os.WriteFile(backupPath, original, 0644); err != nil {
			log.Printf("WARN: config_backup_failed path=%s error=%v", backupPath, err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
