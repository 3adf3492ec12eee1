// Package main provides a CLI tool for generating test material for the backupauth
// API: bearer tokens, backup-id credential requests and receipt presentations.
// Everything is derived from dev keys and will NOT work in production.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"backupauth/internal/backup/models"
	jwttoken "backupauth/internal/jwt_token"
	"backupauth/internal/zkops"
	id "backupauth/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "backupauth"
	defaultAudience = "backupauth-api"
	defaultTokenTTL = 15 * time.Minute
)

type output struct {
	Type   string            `json:"type"`
	Value  string            `json:"value"`
	Claims map[string]any    `json:"claims,omitempty"`
	Usage  map[string]string `json:"usage,omitempty"`
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	requestCmd := flag.NewFlagSet("request", flag.ExitOnError)
	receiptCmd := flag.NewFlagSet("receipt", flag.ExitOnError)
	keysCmd := flag.NewFlagSet("keys", flag.ExitOnError)

	accessAccountID := accessCmd.String("account-id", "", "Account ID (UUID). Generated if empty.")
	accessDeviceID := accessCmd.Uint("device-id", 1, "Device ID")
	accessSigningKey := accessCmd.String("signing-key", devSigningKey, "HMAC signing key")
	accessTTL := accessCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	requestBackupID := requestCmd.String("backup-id", "", "Backup-id to commit. Random if empty.")
	requestJSON := requestCmd.Bool("json", false, "Output as JSON")

	receiptSecret := receiptCmd.String("secret", "", "CREDENTIAL_SECRET the server was started with")
	receiptLevel := receiptCmd.Int64("level", models.LevelMedia.ReceiptLevel(), "Receipt level")
	receiptTTL := receiptCmd.Duration("expires-in", 30*24*time.Hour, "Receipt lifetime from now")
	receiptJSON := receiptCmd.Bool("json", false, "Output as JSON")

	keysSecret := keysCmd.String("secret", "", "CREDENTIAL_SECRET the server was started with")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "access":
		accessCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateAccessToken(*accessAccountID, uint32(*accessDeviceID), *accessSigningKey, *accessTTL, *accessJSON)
	case "request":
		requestCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateCredentialRequest(*requestBackupID, *requestJSON)
	case "receipt":
		receiptCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateReceipt(*receiptSecret, *receiptLevel, *receiptTTL, *receiptJSON)
	case "keys":
		keysCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		showKeys(*keysSecret)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test material for the backupauth API

WARNING: Output uses dev keys and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  access    Generate a bearer token (JWT) for an account
  request   Generate a base64 backup-id credential request
  receipt   Generate a base64 receipt credential presentation
  keys      Print the public keys derived from a credential secret

Examples:
  # Bearer token for a fixed account
  tokengen access -account-id "550e8400-e29b-41d4-a716-446655440000"

  # Body for PUT /v1/archives/backupid
  tokengen request -backup-id my-backup

  # Body for POST /v1/archives/redeem-receipt, server started with CREDENTIAL_SECRET=s3cret
  tokengen receipt -secret s3cret -expires-in 720h

Use "tokengen <command> -h" for more information about a command.`)
}

func generateAccessToken(accountID string, deviceID uint32, signingKey string, ttl time.Duration, jsonOutput bool) {
	aid := parseOrGenerateAccountID(accountID)
	svc := jwttoken.NewJWTService(signingKey, defaultIssuer, defaultAudience, ttl)

	token, err := svc.GenerateAccessToken(context.Background(), aid, deviceID)
	if err != nil {
		fail("generating token", err)
	}

	if jsonOutput {
		printJSON(output{
			Type:  "access_token",
			Value: token,
			Claims: map[string]any{
				"sub":       aid.String(),
				"device_id": deviceID,
				"ttl":       ttl.String(),
			},
			Usage: map[string]string{"header": "Authorization: Bearer <token>"},
		})
		return
	}
	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Account ID:  %s\n", aid)
	fmt.Printf("Device ID:   %d\n", deviceID)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/v1/archives/auth?...")
}

func generateCredentialRequest(backupID string, jsonOutput bool) {
	raw := []byte(backupID)
	if len(raw) == 0 {
		raw = make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			fail("generating backup-id", err)
		}
	}
	request, err := zkops.NewCredentialRequest(raw, nil)
	if err != nil {
		fail("building credential request", err)
	}
	encoded := base64.StdEncoding.EncodeToString(request)

	if jsonOutput {
		printJSON(output{
			Type:  "backup_auth_credential_request",
			Value: encoded,
			Usage: map[string]string{"body": `{"backupAuthCredentialRequest": "<value>"}`},
		})
		return
	}
	fmt.Printf("{\"backupAuthCredentialRequest\": %q}\n", encoded)
}

func generateReceipt(secret string, level int64, ttl time.Duration, jsonOutput bool) {
	if secret == "" {
		fail("generating receipt", fmt.Errorf("-secret is required"))
	}
	key, err := zkops.DeriveReceiptKey([]byte(secret))
	if err != nil {
		fail("deriving receipt key", err)
	}

	var serial id.ReceiptSerial
	if _, err := rand.Read(serial[:]); err != nil {
		fail("generating serial", err)
	}
	receipt := models.Receipt{
		Serial:       serial,
		Expiration:   time.Now().UTC().Add(ttl).Truncate(time.Second),
		ReceiptLevel: level,
	}
	presentation, err := zkops.NewReceiptIssuer(key).Present(receipt)
	if err != nil {
		fail("presenting receipt", err)
	}
	encoded := base64.StdEncoding.EncodeToString(presentation)

	if jsonOutput {
		printJSON(output{
			Type:  "receipt_credential_presentation",
			Value: encoded,
			Claims: map[string]any{
				"serial":        serial.String(),
				"expiration":    receipt.Expiration.Format(time.RFC3339),
				"receipt_level": level,
			},
			Usage: map[string]string{"body": `{"receiptCredentialPresentation": "<value>"}`},
		})
		return
	}
	fmt.Printf("Serial:      %s\n", serial)
	fmt.Printf("Expiration:  %s\n", receipt.Expiration.Format(time.RFC3339))
	fmt.Printf("Level:       %d\n", level)
	fmt.Println()
	fmt.Printf("{\"receiptCredentialPresentation\": %q}\n", encoded)
}

func showKeys(secret string) {
	if secret == "" {
		fail("deriving keys", fmt.Errorf("-secret is required"))
	}
	credentialKey, err := zkops.DeriveCredentialKey([]byte(secret))
	if err != nil {
		fail("deriving credential key", err)
	}
	receiptKey, err := zkops.DeriveReceiptKey([]byte(secret))
	if err != nil {
		fail("deriving receipt key", err)
	}
	printJSON(map[string]string{
		"credential_public_key":     zkops.EncodePublicKey(zkops.PublicKeyOf(credentialKey)),
		"receipt_issuer_public_key": zkops.EncodePublicKey(zkops.PublicKeyOf(receiptKey)),
	})
}

func parseOrGenerateAccountID(value string) id.AccountID {
	if value == "" {
		return id.NewAccountID()
	}
	accountID, err := id.ParseAccountID(value)
	if err != nil {
		fail("invalid -account-id", err)
	}
	return accountID
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("encoding JSON", err)
	}
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}
