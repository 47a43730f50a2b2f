// Package catalog holds the static lookup tables of the traffic corpus:
// the covered cities and their tile grids, the network services with their
// category and average per-user consumption, the traffic kinds and
// geographic levels, the canonical 15-minute time axis and the observation
// window.
//
// The tables are plain read-only values; nothing here is computed lazily or
// cached.
package catalog
