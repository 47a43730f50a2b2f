// Package services orchestrates the pipeline. Each service wires the pure
// packages (spatial, cube, noise, night) to their inputs and outputs, and
// adds logging, spans and metrics around them.
//
// # Available Services
//
//	- MatchingService: builds, persists and looks up tile to zone
//	  correspondences through a spatial.Registry
//	- TrafficService: assembles cubes and writes night totals, filtered time
//	  series, time-of-day profiles and tile to zone file aggregations
//	- HealthService: liveness, readiness and version reports
//
// # Common Service Pattern
//
// Services receive their collaborators explicitly and never reach for
// globals:
//
//	matching := services.NewMatchingService(cfg.Matching, layers, store, metrics, tracer, logger)
//	loader := dataprocessing.NewFileLoader(paths, matching.Registry(), logger)
//	traffic, err := services.NewTrafficService(cfg.Traffic, services.TrafficDeps{
//	    Loader: loader,
//	    Writer: exporter.NewCSVWriter(paths, logger),
//	})
//
// # Error Handling
//
// Errors from the core packages are returned wrapped with fmt.Errorf and
// keep their AppError type, so handlers can map them with
// errors.FromError. Invalid configuration surfaces as CONFIG errors at
// construction time.
//
// # Testing
//
// Services are tested by mocking their boundaries with testify/mock:
//
//	store := new(MockStore)
//	store.On("Load", mock.Anything, "Lyon").Return(nil, apperrors.NewNotFoundError("Lyon"))
package services
