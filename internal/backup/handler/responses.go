package handler

import "backupauth/internal/backup/models"

type CredentialResponse struct {
	// Credential is rendered as standard base64 by encoding/json.
	Credential     []byte `json:"credential"`
	RedemptionTime int64  `json:"redemptionTime"`
}

type CredentialsResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

func toCredentialsResponse(creds []models.Credential) *CredentialsResponse {
	out := &CredentialsResponse{Credentials: make([]CredentialResponse, 0, len(creds))}
	for _, c := range creds {
		out.Credentials = append(out.Credentials, CredentialResponse{
			Credential:     c.Credential,
			RedemptionTime: c.RedemptionTime.Unix(),
		})
	}
	return out
}
