package zkops

import (
	"fmt"
	"time"

	"github.com/cloudflare/circl/sign/ed25519"

	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
)

const kindReceipt = "receipt-credential-presentation"

type receiptWire struct {
	Version      uint   `cbor:"1,keyasint"`
	Serial       []byte `cbor:"2,keyasint"`
	Expiration   int64  `cbor:"3,keyasint"`
	ReceiptLevel int64  `cbor:"4,keyasint"`
}

// ReceiptVerifier accepts presentations signed by the receipt issuer.
type ReceiptVerifier struct {
	issuer ed25519.PublicKey
}

func NewReceiptVerifier(issuer ed25519.PublicKey) *ReceiptVerifier {
	return &ReceiptVerifier{issuer: issuer}
}

func (v *ReceiptVerifier) VerifyReceiptPresentation(presentation []byte) (models.Receipt, error) {
	payload, err := openEnvelope(v.issuer, kindReceipt, presentation)
	if err != nil {
		return models.Receipt{}, err
	}
	var w receiptWire
	if err := unmarshal(payload, &w); err != nil {
		return models.Receipt{}, err
	}
	if w.Version != wireVersion {
		return models.Receipt{}, fmt.Errorf("%w: unsupported receipt version %d", ErrMalformed, w.Version)
	}
	serial, err := id.ReceiptSerialFromBytes(w.Serial)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return models.Receipt{
		Serial:       serial,
		Expiration:   time.Unix(w.Expiration, 0).UTC(),
		ReceiptLevel: w.ReceiptLevel,
	}, nil
}

// ReceiptIssuer mints receipt presentations. The payment side of a deployment
// owns this key; the server only ever holds the public half.
type ReceiptIssuer struct {
	key ed25519.PrivateKey
}

func NewReceiptIssuer(key ed25519.PrivateKey) *ReceiptIssuer {
	return &ReceiptIssuer{key: key}
}

func (i *ReceiptIssuer) PublicKey() ed25519.PublicKey {
	return PublicKeyOf(i.key)
}

// Present returns a signed presentation of receipt.
func (i *ReceiptIssuer) Present(receipt models.Receipt) ([]byte, error) {
	payload, err := marshal(receiptWire{
		Version:      wireVersion,
		Serial:       receipt.Serial.Bytes(),
		Expiration:   receipt.Expiration.Unix(),
		ReceiptLevel: receipt.ReceiptLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return marshal(envelope{
		Kind:      kindReceipt,
		Payload:   payload,
		Signature: ed25519.Sign(i.key, signedMessage(kindReceipt, payload)),
	})
}
