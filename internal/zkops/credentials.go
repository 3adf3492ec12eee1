package zkops

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/cloudflare/circl/sign/ed25519"

	"backupauth/internal/backup/models"
	"backupauth/internal/backup/ports"
)

const (
	kindCredential = "backup-auth-credential"

	// CommitmentSize is the length of a blinded backup-id commitment.
	CommitmentSize = sha256.Size
	blindingSize   = 16
)

// requestWire is the serialized credential request a client submits.
type requestWire struct {
	Version    uint   `cbor:"1,keyasint"`
	Commitment []byte `cbor:"2,keyasint"`
}

// credentialWire is the signed payload of an issued credential.
type credentialWire struct {
	Version        uint   `cbor:"1,keyasint"`
	Commitment     []byte `cbor:"2,keyasint"`
	RedemptionTime int64  `cbor:"3,keyasint"`
	ReceiptLevel   int64  `cbor:"4,keyasint"`
}

// Issuer deserializes credential requests and mints credentials signed with the
// credential key.
type Issuer struct {
	key ed25519.PrivateKey
}

func NewIssuer(key ed25519.PrivateKey) *Issuer {
	return &Issuer{key: key}
}

func (i *Issuer) PublicKey() ed25519.PublicKey {
	return PublicKeyOf(i.key)
}

func (i *Issuer) DeserializeRequest(raw []byte) (ports.CredentialRequest, error) {
	var w requestWire
	if err := unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("%w: unsupported request version %d", ErrMalformed, w.Version)
	}
	if len(w.Commitment) != CommitmentSize {
		return nil, fmt.Errorf("%w: commitment must be %d bytes", ErrMalformed, CommitmentSize)
	}
	return &credentialRequest{issuer: i, raw: bytes.Clone(raw), commitment: w.Commitment}, nil
}

type credentialRequest struct {
	issuer     *Issuer
	raw        []byte
	commitment []byte
}

func (r *credentialRequest) Serialize() []byte {
	return bytes.Clone(r.raw)
}

func (r *credentialRequest) IssueCredential(redemptionTime time.Time, level models.BackupLevel) ([]byte, error) {
	payload, err := marshal(credentialWire{
		Version:        wireVersion,
		Commitment:     r.commitment,
		RedemptionTime: redemptionTime.Unix(),
		ReceiptLevel:   level.ReceiptLevel(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode credential: %w", err)
	}
	return marshal(envelope{
		Kind:      kindCredential,
		Payload:   payload,
		Signature: ed25519.Sign(r.issuer.key, signedMessage(kindCredential, payload)),
	})
}

// NewCredentialRequest builds the request a client would submit for backupID.
// Each call draws a fresh blinding factor from rng, so repeated calls for the same
// backup-id produce different requests.
func NewCredentialRequest(backupID []byte, rng io.Reader) ([]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	blinding := make([]byte, blindingSize)
	if _, err := io.ReadFull(rng, blinding); err != nil {
		return nil, fmt.Errorf("read blinding factor: %w", err)
	}
	h := sha256.New()
	h.Write(blinding)
	h.Write(backupID)
	return marshal(requestWire{Version: wireVersion, Commitment: h.Sum(nil)})
}

// IssuedCredential is the content of a verified credential.
type IssuedCredential struct {
	Commitment     []byte
	RedemptionTime time.Time
	Level          models.BackupLevel
}

// VerifyCredential checks a credential against the issuer public key.
func VerifyCredential(pub ed25519.PublicKey, raw []byte) (IssuedCredential, error) {
	payload, err := openEnvelope(pub, kindCredential, raw)
	if err != nil {
		return IssuedCredential{}, err
	}
	var w credentialWire
	if err := unmarshal(payload, &w); err != nil {
		return IssuedCredential{}, err
	}
	return IssuedCredential{
		Commitment:     w.Commitment,
		RedemptionTime: time.Unix(w.RedemptionTime, 0).UTC(),
		Level:          models.BackupLevel(w.ReceiptLevel),
	}, nil
}

func openEnvelope(pub ed25519.PublicKey, kind string, raw []byte) ([]byte, error) {
	var env envelope
	if err := unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrMalformed, kind, env.Kind)
	}
	if !ed25519.Verify(pub, signedMessage(kind, env.Payload), env.Signature) {
		return nil, ErrSignature
	}
	return env.Payload, nil
}
