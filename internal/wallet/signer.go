package wallet

import (
	"errors"
	"fmt"
)

// Attestation schemes sent in the signature scheme header.
const (
	SchemeEIP191  = "eip191"
	SchemeEd25519 = "ed25519"
)

// ErrBadSignature is returned when an attestation does not verify.
var ErrBadSignature = errors.New("signature does not match publisher")

// Signer signs request bodies on behalf of a publisher address.
type Signer interface {
	// Scheme names the signature algorithm.
	Scheme() string

	// Publisher returns the address in the chain's native format.
	Publisher() string

	// Sign returns an encoded signature over body.
	Sign(body []byte) (string, error)
}

// Verify checks an attestation produced by a Signer of the given scheme.
func Verify(scheme, publisher string, body []byte, signature string) error {
	switch scheme {
	case SchemeEIP191:
		return verifyEIP191(publisher, body, signature)
	case SchemeEd25519:
		return verifyEd25519(publisher, body, signature)
	default:
		return fmt.Errorf("unsupported signature scheme %q", scheme)
	}
}
