package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "backupauth/pkg/domain-errors"
	"backupauth/pkg/requestcontext"
)

// Normalizable requests trim or canonicalize fields before validation.
type Normalizable interface {
	Normalize()
}

// Validatable requests check their own shape after normalization.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare reads exactly one JSON object from the body into a T, then runs
// Normalize and Validate when T implements them. On failure the error response has
// already been written and ok is false.
//
//	req, ok := httputil.DecodeAndPrepare[SetBackupIDRequest](w, r, h.logger)
//	if !ok {
//		return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (req *T, ok bool) {
	ctx := r.Context()
	req = new(T)
	if err := decodeSingle(r.Body, req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.InfoContext(ctx, "request body too large",
				"limit_bytes", tooLarge.Limit,
				"request_id", requestcontext.RequestID(ctx),
			)
			WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{
				Error:       "request_too_large",
				Description: "request body too large",
			})
			return nil, false
		}
		logger.InfoContext(ctx, "undecodable request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}

	if err := Prepare(req); err != nil {
		logger.InfoContext(ctx, "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		var domainErr *dErrors.Error
		if !errors.As(err, &domainErr) {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

// Prepare normalizes then validates req.
func Prepare(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

func decodeSingle(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}
