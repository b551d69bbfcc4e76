package rest

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/wavedeck/internal/domain/library"
	"github.com/osa030/wavedeck/internal/infra/ibroadcast"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Warn().Err(err).Msg("http: failed to encode response")
	}
}

// writeError maps domain errors onto HTTP statuses: upstream auth and fetch
// failures become 502, unknown ids 404, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ibroadcast.ErrAuth), errors.Is(err, ibroadcast.ErrFetch):
		status = http.StatusBadGateway
	case errors.Is(err, library.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
