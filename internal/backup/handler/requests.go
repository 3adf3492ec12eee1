package handler

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"

	dErrors "backupauth/pkg/domain-errors"
	limits "backupauth/pkg/platform/validation"
	"backupauth/pkg/validation"
)

// HTTP request DTOs. Binary fields travel as standard base64.

type SetBackupIDRequest struct {
	BackupAuthCredentialRequest string `json:"backupAuthCredentialRequest" validate:"required,base64"`
}

func (r *SetBackupIDRequest) Normalize() {
	if r == nil {
		return
	}
	r.BackupAuthCredentialRequest = strings.TrimSpace(r.BackupAuthCredentialRequest)
}

func (r *SetBackupIDRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := limits.CheckStringLength("backup_auth_credential_request", r.BackupAuthCredentialRequest, limits.MaxCredentialRequestLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

func (r *SetBackupIDRequest) Bytes() []byte {
	b, _ := base64.StdEncoding.DecodeString(r.BackupAuthCredentialRequest)
	return b
}

type RedeemReceiptRequest struct {
	ReceiptCredentialPresentation string `json:"receiptCredentialPresentation" validate:"required,base64"`
}

func (r *RedeemReceiptRequest) Normalize() {
	if r == nil {
		return
	}
	r.ReceiptCredentialPresentation = strings.TrimSpace(r.ReceiptCredentialPresentation)
}

func (r *RedeemReceiptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := limits.CheckStringLength("receipt_credential_presentation", r.ReceiptCredentialPresentation, limits.MaxPresentationLength); err != nil {
		return err
	}
	return validation.Validate(r)
}

func (r *RedeemReceiptRequest) Bytes() []byte {
	b, _ := base64.StdEncoding.DecodeString(r.ReceiptCredentialPresentation)
	return b
}

// CredentialWindow is the redemption window of a credentials request, in epoch
// seconds. Range checks belong to the service; only shape is checked here.
type CredentialWindow struct {
	Start time.Time
	End   time.Time
}

func parseCredentialWindow(q url.Values) (CredentialWindow, error) {
	start, err := epochSecondsParam(q, "redemptionStartSeconds")
	if err != nil {
		return CredentialWindow{}, err
	}
	end, err := epochSecondsParam(q, "redemptionEndSeconds")
	if err != nil {
		return CredentialWindow{}, err
	}
	return CredentialWindow{Start: start, End: end}, nil
}

func epochSecondsParam(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" is required")
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs < 0 {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be a non-negative integer")
	}
	return time.Unix(secs, 0).UTC(), nil
}
