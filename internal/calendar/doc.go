// Package calendar enumerates the calendar days whose traffic is noisy:
// public holidays, weekend days and per-city anomaly dates. ForCity bundles
// them into read-only ExclusionSets consumed by the noise filter.
package calendar
