// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for texelshow configuration and cache files.

package config

import (
	"os"
	"path/filepath"
)

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "texelshow"), nil
}

func systemConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, systemConfigName), nil
}

func legacyConfigPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, legacyConfigName), nil
}

// Path returns the location of the system config file.
func Path() (string, error) {
	return systemConfigPath()
}

// CachePath returns the compile cache database location. An explicit
// compile.cache_path wins; otherwise the file lives in the user cache dir.
func CachePath(cfg Config) (string, error) {
	if p := cfg.GetString(SectionCompile, "cache_path", ""); p != "" {
		return p, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "texelshow", "scenes.db"), nil
}
