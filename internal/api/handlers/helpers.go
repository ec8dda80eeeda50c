package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/smmpanel/internal/pkg/errors"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/utils"
	"github.com/pratik-mahalle/smmpanel/internal/pkg/validator"
)

// maxBodyBytes bounds request bodies; a full sync request is a few KB at most
const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and validates it
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validator, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if errs := v.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return false
	}
	return true
}

// writeServiceError converts service errors into API errors
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	utils.WriteError(w, errors.From(err, fallback))
}

// idParam parses a positive int64 URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("Invalid " + name)
	}
	return id, nil
}
