// Package http implements the read-only HTTP surface of the netmob service.
// Handlers are a thin layer between HTTP transport and the services package:
// they parse path parameters, call a service and render the result.
//
// # Routes
//
//	GET /healthz                                   liveness of the process
//	GET /readyz                                    input trees and output dir
//	GET /livez                                     runtime statistics
//	GET /metrics                                   Prometheus scrape endpoint
//	GET /api/v1/version                            build information
//	GET /api/v1/correspondence/{city}              every tile to IRIS pair
//	GET /api/v1/correspondence/{city}/tiles/{tile} the IRIS zone of one tile
//
// # Handler Structure
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    city := chi.URLParam(r, "city")
//
//	    result, err := h.service.DoSomething(r.Context(), city)
//	    if err != nil {
//	        render.Render(w, r, apperrors.NewErrorResponse(apperrors.FromError(err)))
//	        return
//	    }
//
//	    render.JSON(w, r, result)
//	}
//
// # Error Handling
//
// Service errors are mapped with errors.FromError and rendered as
//
//	{
//	    "success": false,
//	    "error": {
//	        "status_code": 404,
//	        "error_code": "NOT_FOUND",
//	        "message": "tile 9 not found"
//	    }
//	}
//
// # Middleware
//
// NewRouter installs RequestID, RealIP, Telemetry, StructuredLogger,
// Recoverer and, when configured, the rate limiter. /metrics is mounted
// before the traced group so scrapes do not produce spans.
package http
