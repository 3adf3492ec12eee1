// Package handler exposes the backup credential flows over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"backupauth/internal/backup/models"
	"backupauth/internal/backup/ports"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/httputil"
	"backupauth/pkg/requestcontext"
)

// Service is the backup service as seen by the transport.
type Service interface {
	ParseCredentialRequest(raw []byte) (ports.CredentialRequest, error)
	CommitBackupID(ctx context.Context, accountID id.AccountID, request ports.CredentialRequest) error
	GetBackupAuthCredentials(ctx context.Context, accountID id.AccountID, start, end time.Time) ([]models.Credential, error)
	RedeemReceipt(ctx context.Context, accountID id.AccountID, presentation []byte) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the archive routes. r must already authenticate the caller.
func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/archives/backupid", h.HandleSetBackupID)
	r.Post("/v1/archives/redeem-receipt", h.HandleRedeemReceipt)
	r.Get("/v1/archives/auth", h.HandleGetCredentials)
}

// HandleSetBackupID commits the caller's blinded backup-id.
func (h *Handler) HandleSetBackupID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetBackupIDRequest](w, r, h.logger)
	if !ok {
		return
	}

	credentialRequest, err := h.service.ParseCredentialRequest(req.Bytes())
	if err != nil {
		h.logger.InfoContext(ctx, "rejected credential request", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.CommitBackupID(ctx, accountID, credentialRequest); err != nil {
		h.logFailure(ctx, "set backup-id failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRedeemReceipt redeems a receipt credential presentation.
func (h *Handler) HandleRedeemReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RedeemReceiptRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.RedeemReceipt(ctx, accountID, req.Bytes()); err != nil {
		h.logFailure(ctx, "redeem receipt failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetCredentials returns one credential per day of the requested window.
func (h *Handler) HandleGetCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, err := httputil.RequireAccountID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	window, err := parseCredentialWindow(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	creds, err := h.service.GetBackupAuthCredentials(ctx, accountID, window.Start, window.End)
	if err != nil {
		h.logFailure(ctx, "get backup credentials failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialsResponse(creds))
}

// logFailure keeps client mistakes at info and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string) {
	status := httputil.StatusFor(err)
	if status < http.StatusInternalServerError {
		h.logger.InfoContext(ctx, msg, "error", err, "status", status, "request_id", requestID)
		return
	}
	h.logger.ErrorContext(ctx, msg, "error", err, "status", status, "request_id", requestID)
}
