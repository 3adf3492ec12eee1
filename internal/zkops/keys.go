package zkops

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/hkdf"
)

// HKDF info labels keep the credential and receipt keys independent even when
// they come from the same secret.
const (
	credentialKeyInfo = "backupauth/credential-issuer/v1"
	receiptKeyInfo    = "backupauth/receipt-issuer/v1"
)

var keySalt = []byte("backupauth-zkops")

// DeriveCredentialKey derives the credential issuing key from secret.
func DeriveCredentialKey(secret []byte) (ed25519.PrivateKey, error) {
	return deriveKey(secret, credentialKeyInfo)
}

// DeriveReceiptKey derives the receipt issuing key from secret. Only tooling that
// mints test receipts needs the private half.
func DeriveReceiptKey(secret []byte) (ed25519.PrivateKey, error) {
	return deriveKey(secret, receiptKeyInfo)
}

func deriveKey(secret []byte, info string) (ed25519.PrivateKey, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("key derivation secret is empty")
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, keySalt, []byte(info)), seed); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// PublicKeyOf returns the public half of priv.
func PublicKeyOf(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

// EncodePublicKey renders pub the way RECEIPT_ISSUER_PUBLIC_KEY expects it.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// ParsePublicKey decodes a base64 ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
