// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the system configuration file.

package config

// Section names.
const (
	SectionCompile = "compile"
	SectionPlayer  = "player"
	SectionPreview = "preview"
)

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults(SectionCompile, Section{
		"workers":     0,
		"code_theme":  "monokai",
		"cache":       true,
		"cache_path":  "",
		"row_hash":    true,
		"cache_keep":  200,
		"watch_delay": 0.15,
	})
	cfg.RegisterDefaults(SectionPlayer, defaultPlayerBindings())
	cfg.RegisterDefaults(SectionPreview, Section{
		"addr": "127.0.0.1:7070",
	})
}

func defaultPlayerBindings() Section {
	return Section{
		"next":  []interface{}{"Right", " ", "Enter"},
		"prev":  []interface{}{"Left"},
		"first": []interface{}{"Home"},
		"last":  []interface{}{"End"},
		"quit":  []interface{}{"q", "Esc"},
	}
}
