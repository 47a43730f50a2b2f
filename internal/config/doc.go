// Package config provides centralized configuration management for the
// traffic pipeline. It handles loading configuration from multiple sources,
// validation, and the on-disk layout of the traffic corpus.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NETMOB_* for namespacing:
//
//	NETMOB_LOGGING_LEVEL=debug
//	NETMOB_PATHS_DATA_DIR=/srv/netmob/TrafficData
//	NETMOB_TRAFFIC_KIND=USERS
//	NETMOB_STORE_DRIVER=sqlite3
//	NETMOB_STORE_DSN=file:matching.db
//
// NETMOB_CONFIG_FILE points at an explicit YAML file; otherwise config.yaml
// and configs/config.yaml are tried.
//
// # Path Management
//
// Paths resolves the corpus layout:
//
//	paths := config.NewPaths(cfg.Paths)
//	ul := paths.TrafficFile("iris", "Paris", "Netflix", day, "UL")
//	// data/TrafficData/iris/Paris/Netflix/20190401/Paris_Netflix_20190401_UL.txt
//
// # Validation
//
// Struct constraints are checked with go-playground/validator; clock-time
// fields must parse as HH:MM.
package config
