package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAxisMismatchError("slice %s has %d locations", "Web/20190316", 3),
			want: "[AXIS_MISMATCH] slice Web/20190316 has 3 locations",
		},
		{
			name: "with cause",
			err:  NewParsingError("bad row", fmt.Errorf("strconv failure")),
			want: "[PARSING] bad row: strconv failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_IsMatchesSentinelByType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"geometry", NewGeometryInputError("tile %d has no CRS", 4), ErrGeometryInput, true},
		{"no correspondence", NewNoCorrespondenceError("Paris"), ErrNoCorrespondence, true},
		{"axis", NewAxisMismatchError("x"), ErrAxisMismatch, true},
		{"consumption", NewInvalidServiceConsumptionError("Netflix", 0), ErrInvalidServiceConsumption, true},
		{"wrapped", fmt.Errorf("build cube: %w", NewAxisMismatchError("x")), ErrAxisMismatch, true},
		{"different type", NewAxisMismatchError("x"), ErrGeometryInput, false},
		{"plain error", fmt.Errorf("boom"), ErrAxisMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := NewNoCorrespondenceError("Lyon")
	assert.Equal(t, "Lyon", err.Context["region"])

	err.WithContext("tiles", 12)
	assert.Equal(t, 12, err.Context["tiles"])

	var bare AppError
	bare.WithContext("k", "v")
	assert.Equal(t, "v", bare.Context["k"])
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", NewNotFoundError("city Atlantis"), http.StatusNotFound, "NOT_FOUND"},
		{"geometry", NewGeometryInputError("bad"), http.StatusBadRequest, "GEOMETRY_INPUT"},
		{"no correspondence", NewNoCorrespondenceError("Nice"), http.StatusUnprocessableEntity, "NO_CORRESPONDENCE"},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError, "STORAGE"},
		{"api error passthrough", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.ErrorCode)
		})
	}
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	err := render.Render(w, r, NewErrorResponse(NotFoundError("tile 42")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.ErrorCode)
	assert.Equal(t, "tile 42 not found", body.Error.Message)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, InvalidParameterError("tile", fmt.Errorf("not an integer")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "not an integer")
}
