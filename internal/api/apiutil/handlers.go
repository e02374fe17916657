package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/ladder"
	"github.com/codr1/PickleLadder/internal/ratelimit"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes an ErrorResponse. FieldError values keep their field name.
func WriteError(w http.ResponseWriter, status int, err error) {
	body := ErrorResponse{Error: err.Error()}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		body.Field = fieldErr.Field
	}
	_ = WriteJSON(w, status, body)
}

// WriteLadderError maps a ladder or authorization error onto its HTTP status.
// Unclassified errors are logged and reported as 500.
func WriteLadderError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var validation *ladder.ValidationError
	switch {
	case errors.As(err, &validation):
		_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: validation.Error(), Field: validation.Field})
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, errors.New("authentication required"))
	case errors.Is(err, ladder.ErrForbidden), errors.Is(err, ladder.ErrNotOnTeam), errors.Is(err, authz.ErrForbidden):
		WriteError(w, http.StatusForbidden, err)
	case ladder.IsNotFound(err):
		WriteError(w, http.StatusNotFound, err)
	case ladder.IsStateConflict(err):
		WriteError(w, http.StatusConflict, err)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("action", action).Msg("Ladder operation failed")
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to %s", action))
	}
}

// WriteRateLimited reports a throttled match action.
func WriteRateLimited(w http.ResponseWriter, result ratelimit.LimitResult) {
	seconds := int(result.RetryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	WriteError(w, http.StatusTooManyRequests, errors.New("too many match actions, slow down"))
}

// RenderHTMLComponent renders component as an HTML response. It returns false
// after writing a 500 when rendering fails.
func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, logMsg, clientMsg string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMsg)
		http.Error(w, clientMsg, http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
	return true
}
