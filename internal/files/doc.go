// Package files provides file system operations on the traffic corpus.
//
// Discovery lists what is present in the per-day counter tree
// {data}/{level}/{city}/{service}/{YYYYMMDD}/: cities, services, days and the
// days of the observation window that are missing.
//
// Manager resolves paths against the configured directories and writes files
// atomically (temporary file then rename).
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	days, err := discovery.Days(catalog.LevelTile, "Paris", "Netflix")
//
//	manager := files.NewManager(paths, logger)
//	err = manager.WriteFile("reports/night.csv", data)
package files
