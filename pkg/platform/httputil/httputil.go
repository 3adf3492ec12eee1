// Package httputil renders backup-auth results as JSON: domain errors become
// {"error","error_description"} bodies and admission refusals carry Retry-After.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"backupauth/pkg/admission"
	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/requestcontext"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type wireError struct {
	status int
	name   string
}

var wireErrors = map[dErrors.Code]wireError{
	dErrors.CodeNotFound:     {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:   {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput: {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:   {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:     {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:    {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:      {http.StatusGatewayTimeout, "timeout"},
}

var internalError = wireError{http.StatusInternalServerError, "internal_error"}

func wireFor(code dErrors.Code) wireError {
	if we, ok := wireErrors[code]; ok {
		return we
	}
	return internalError
}

// WriteJSON sends body with status. Encoding errors are dropped because the
// status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // status already sent
}

// WriteError renders err. Rate-limit refusals become 429 (413 for legacy
// clients) with Retry-After. Domain errors map by code, and their message is
// echoed unless the failure is internal.
func WriteError(w http.ResponseWriter, err error) {
	if re, ok := admission.As(err); ok {
		if v, ok := re.RetryAfterHeader(); ok {
			w.Header().Set("Retry-After", v)
		}
		WriteJSON(w, re.HTTPStatus(), ErrorBody{Error: "rate_limit_exceeded", Description: re.Error()})
		return
	}

	we := wireFor(dErrors.CodeOf(err))
	body := ErrorBody{Error: we.name}
	var de *dErrors.Error
	if we != internalError && errors.As(err, &de) {
		body.Description = de.Message
	}
	WriteJSON(w, we.status, body)
}

// StatusFor returns the status WriteError would send for err.
func StatusFor(err error) int {
	if re, ok := admission.As(err); ok {
		return re.HTTPStatus()
	}
	return wireFor(dErrors.CodeOf(err)).status
}

// RequireAccountID returns the authenticated account. Behind the auth
// middleware a missing account is a wiring bug, so it is reported as internal.
func RequireAccountID(ctx context.Context, logger *slog.Logger) (id.AccountID, error) {
	accountID := requestcontext.AccountID(ctx)
	if !accountID.IsNil() {
		return accountID, nil
	}
	if logger != nil {
		logger.ErrorContext(ctx, "no account in context behind auth middleware",
			"request_id", requestcontext.RequestID(ctx))
	}
	return id.AccountID{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
}
