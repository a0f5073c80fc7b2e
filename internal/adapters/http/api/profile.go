package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/apidemo/internal/domain/model"
	"github.com/okian/apidemo/internal/domain/profile"
)

// ProfileDependencies defines the interface for profile derivation.
type ProfileDependencies interface {
	BuildProfile(ctx context.Context, name, birthDate, phoneNumbers string) (model.Profile, error)
}

// ProfileHandler handles profile requests.
type ProfileHandler struct {
	deps         ProfileDependencies
	validator    *requestValidator
	maxBodyBytes int64
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies, maxBodyBytes int64) *ProfileHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &ProfileHandler{
		deps:         deps,
		validator:    newRequestValidator(),
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleProfile handles POST /api/api2/hello/{name}.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_profile"

	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
		return
	}

	query := phoneQuery{}
	if values := r.URL.Query(); values.Has("phone_numbers") {
		v := values.Get("phone_numbers")
		query.PhoneNumbers = &v
	}
	if err := h.validator.Struct(query); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var body birthDateRequest
	if status, err := h.decodeBody(w, r, &body); err != nil {
		code := "bad_request"
		if status == http.StatusRequestEntityTooLarge {
			code = "body_too_large"
		}
		writeError(w, status, code, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validator.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p, err := h.deps.BuildProfile(r.Context(), name, body.BirthDate, *query.PhoneNumbers)
	if err != nil {
		if isClientError(err) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(p))
}

// decodeBody reads a single JSON object from the size-limited body and
// returns the status to report on failure.
func (h *ProfileHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return http.StatusRequestEntityTooLarge, ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return http.StatusBadRequest, errors.New("missing request body")
		default:
			return http.StatusBadRequest, errors.New("invalid JSON body")
		}
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("invalid JSON body; trailing data")
	}
	return 0, nil
}

// isClientError reports whether err was caused by the request values.
func isClientError(err error) bool {
	return errors.Is(err, profile.ErrInvalidBirthDate) ||
		errors.Is(err, profile.ErrBirthDateInFuture) ||
		errors.Is(err, profile.ErrAgeOutOfRange)
}
