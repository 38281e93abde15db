package respond

import (
	"encoding/json"
	"net/http"

	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const InternalError = "Internal server error"

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, api.ErrorResponse{Error: msg})
}

// Internal logs err under the upstream tag and writes the generic 500 body.
// Upstream details never reach the client.
func Internal(w http.ResponseWriter, r *http.Request, upstream, stage string, err error) {
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("api", upstream).
		Str("stage", stage).
		Msg("request failed")
	Error(w, r, http.StatusInternalServerError, InternalError)
}
