// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/migrate.go
// Summary: Legacy config migration helpers.
// Notes: The legacy config.json carried a flat key_bindings object with one
// key per action; those become single-entry lists in the player section.

package config

var legacyBindingNames = map[string]string{
	"next_frame":  "next",
	"prev_frame":  "prev",
	"first_frame": "first",
	"last_frame":  "last",
	"quit":        "quit",
}

func migrateSystemFromLegacy(cfg Config) (bool, error) {
	if cfg == nil {
		return false, nil
	}
	legacyPath, err := legacyConfigPath()
	if err != nil {
		return false, err
	}
	legacyCfg, exists, err := readConfig(legacyPath)
	if err != nil || !exists || legacyCfg == nil {
		return false, err
	}

	migrated := false
	for _, name := range []string{SectionCompile, SectionPlayer, SectionPreview} {
		if copySection(cfg, legacyCfg, name) {
			migrated = true
		}
	}
	if bindings := legacyCfg.Section("key_bindings"); bindings != nil {
		player := cfg.Section(SectionPlayer)
		if player == nil {
			player = make(Section)
			cfg[SectionPlayer] = player
		}
		for oldKey, newKey := range legacyBindingNames {
			key, ok := bindings[oldKey].(string)
			if !ok || key == "" {
				continue
			}
			if _, set := player[newKey]; set {
				continue
			}
			player[newKey] = []interface{}{key}
			migrated = true
		}
	}
	return migrated, nil
}

func copySection(dst Config, src Config, name string) bool {
	if dst == nil || src == nil || name == "" {
		return false
	}
	if _, ok := dst[name]; ok {
		return false
	}
	if section, ok := src[name]; ok {
		dst[name] = section
		return true
	}
	return false
}
