// Package app wires the netmob components together and manages the HTTP
// server lifecycle.
//
// # Initialization Flow
//
//	1. Resolve paths and create the output directories
//	2. Initialize OpenTelemetry and the pipeline instruments
//	3. Open the correspondence store selected by store.driver
//	4. Build the matching, traffic and health services
//	5. Build the router and the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer application.Close(ctx)
//
//	return application.Run(ctx)
//
// Batch commands use Services directly and never start the server.
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. The
// server then gets server.shutdown_timeout to finish in-flight requests.
// Close releases the store and flushes telemetry.
package app
