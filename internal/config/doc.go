// Package config handles loading and parsing the ticontrol configuration file.
//
// # Overview
//
// This package reads a TOML file describing where the device server lives and
// how to reach its push channel. Every key is optional; a missing file yields
// Default().
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/ticontrol/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Host Selection
//
// The command channel base address is chosen at start-up: SelectAPI tests the
// runtime host name against host_pattern (a regular expression, default
// "localhost"). A match selects dev_api, anything else prod_api.
//
// # TOML Format
//
//	dev_api = "http://localhost:5020"
//	prod_api = "http://lab-pi:5000"
//	host_pattern = "localhost"
//	theme = "Nightfox"
//	resync_seconds = 0
//
//	[push]
//	backend = "websocket"   # or "mqtt"
//	path = "/events"
//
//	[mqtt]
//	broker = "tcp://broker:1883"
//	client_id = "ticontrol"
//	topic_prefix = "ticontrol/events"
//
//	[log]
//	file = "~/.local/share/ticontrol/ticontrol.log"
//	level = "info"
//	max_size_mb = 5
//	max_backups = 3
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and
// malformed TOML. SelectAPI wraps ErrInvalidPattern when host_pattern does
// not compile.
package config
