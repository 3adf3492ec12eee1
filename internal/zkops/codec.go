// Package zkops is a development credential backend. It satisfies the same
// interfaces as a zero-knowledge credential library but with plain signed CBOR
// envelopes, so it provides no anonymity and must not be deployed to production.
package zkops

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	wireVersion = 1

	maxArrayElements = 64
	maxMapPairs      = 64
)

var (
	// ErrMalformed reports bytes that do not decode into the expected structure.
	ErrMalformed = errors.New("malformed encoding")
	// ErrSignature reports an envelope whose signature does not verify.
	ErrSignature = errors.New("signature verification failed")
)

// Core deterministic encoding; duplicate map keys and tags are rejected on decode.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		IndefLength:   cbor.IndefLengthForbidden,
		ShortestFloat: cbor.ShortestFloat16,
		Sort:          cbor.SortCoreDeterministic,
		TagsMd:        cbor.TagsForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("zkops: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: maxArrayElements,
		MaxMapPairs:      maxMapPairs,
		TagsMd:           cbor.TagsForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("zkops: cbor decoder: %v", err))
	}
}

// envelope is a signed payload. The signature covers Kind followed by Payload so
// a credential can never be replayed as a receipt.
type envelope struct {
	Kind      string `cbor:"1,keyasint"`
	Payload   []byte `cbor:"2,keyasint"`
	Signature []byte `cbor:"3,keyasint"`
}

func marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func signedMessage(kind string, payload []byte) []byte {
	msg := make([]byte, 0, len(kind)+1+len(payload))
	msg = append(msg, kind...)
	msg = append(msg, 0)
	return append(msg, payload...)
}
