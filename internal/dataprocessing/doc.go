// Package dataprocessing reads and writes the per-day traffic counter files
// and turns them into cube slices.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Parser: reads space separated counter files into a RawTable
// 2. Aligner: reorders a RawTable onto a location list and the 96-slot axis
// 3. Aggregator: sums tile rows into IRIS zone rows and writes zone files
// 4. Summarizer: reports the cells a cube had to substitute with zero
//
// # Usage
//
// Loading slices for the cube assembler:
//
//	loader := dataprocessing.NewFileLoader(paths, registry, logger)
//	asm := cube.NewAssembler(loader, 4, nil)
//
// Converting tile files to zone files:
//
//	agg := dataprocessing.NewAggregator(paths, manager, registry, 4, logger)
//	stats, err := agg.Run(ctx, dataprocessing.Jobs(cities, services, days))
//
// # Data Flow
//
//	counter file → ParseTraffic → RawTable → Align → cube.Slice → cube.Build
//
// # Error Handling
//
// Malformed lines produce parsing errors naming the line and slot. Missing
// files keep the fs.ErrNotExist chain so callers can test for it.
package dataprocessing
