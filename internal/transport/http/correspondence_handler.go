package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "netmobcli/internal/errors"
	"netmobcli/internal/spatial"
)

// CorrespondenceService is the part of services.MatchingService the handler
// needs.
type CorrespondenceService interface {
	Correspondence(ctx context.Context, city string) (*spatial.Correspondence, error)
	Lookup(ctx context.Context, city string, tile int64) (string, error)
}

// CorrespondenceResponse lists the tile to zone pairs of a city.
type CorrespondenceResponse struct {
	City  string         `json:"city"`
	Tiles int            `json:"tiles"`
	Zones int            `json:"zones"`
	Pairs []spatial.Pair `json:"pairs"`
}

// TileResponse is the zone of one tile.
type TileResponse struct {
	City string `json:"city"`
	Tile int64  `json:"tile"`
	Zone string `json:"iris"`
}

// CorrespondenceHandler serves read-only correspondence lookups.
type CorrespondenceHandler struct {
	service CorrespondenceService
	logger  *slog.Logger
}

// NewCorrespondenceHandler creates a new correspondence handler
func NewCorrespondenceHandler(service CorrespondenceService, logger *slog.Logger) *CorrespondenceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorrespondenceHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "correspondence")),
	}
}

// Routes sets up the correspondence routes
func (h *CorrespondenceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{city}", h.GetCorrespondence)
	r.Get("/{city}/tiles/{tile}", h.GetTile)
	return r
}

// GetCorrespondence handles GET /api/v1/correspondence/{city}
func (h *CorrespondenceHandler) GetCorrespondence(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	c, err := h.service.Correspondence(r.Context(), city)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, CorrespondenceResponse{
		City:  c.Region,
		Tiles: c.Len(),
		Zones: len(c.Zones()),
		Pairs: c.Pairs(),
	})
}

// GetTile handles GET /api/v1/correspondence/{city}/tiles/{tile}
func (h *CorrespondenceHandler) GetTile(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	tile, err := spatial.ParseTileID(chi.URLParam(r, "tile"))
	if err != nil {
		render.Render(w, r, apperrors.NewErrorResponse(apperrors.InvalidParameterError("tile", err)))
		return
	}

	zone, err := h.service.Lookup(r.Context(), city, tile)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, TileResponse{City: city, Tile: tile, Zone: zone})
}

func (h *CorrespondenceHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "correspondence request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	render.Render(w, r, apperrors.NewErrorResponse(apiErr))
}
