package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
)

// StatusEnvelope is the mutation response wire shape. Reads return bare
// arrays and objects instead; WriteJSON covers those.
type StatusEnvelope struct {
	Status bool   `json:"Status"`
	Errors any    `json:"Errors,omitempty"`
	Code   string `json:"Code,omitempty"`
}

// WriteJSON renders a bare payload, used by the read endpoints.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteOK answers a successful mutation with {"Status": true} plus any
// extra fields.
func WriteOK(w http.ResponseWriter, extra map[string]any) {
	WriteOKStatus(w, http.StatusOK, extra)
}

// WriteOKStatus is WriteOK with an explicit HTTP status.
func WriteOKStatus(w http.ResponseWriter, status int, extra map[string]any) {
	payload := map[string]any{"Status": true}
	for k, v := range extra {
		payload[k] = v
	}
	writeJSON(w, status, payload)
}

// WriteError maps the error code to an HTTP status and renders the
// {"Status": false, "Errors": ...} envelope.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeIdempotency:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := StatusEnvelope{
		Status: false,
		Errors: msg,
		Code:   string(typed.Code()),
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Errors = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_constraint": dump.PGConstraint,
		})
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
