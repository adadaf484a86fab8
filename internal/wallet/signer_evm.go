package wallet

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVMSigner signs with an secp256k1 key using EIP-191 personal messages.
type EVMSigner struct {
	privateKey *ecdsa.PrivateKey
}

// NewEVMSigner creates a signer from an ECDSA private key.
func NewEVMSigner(key *ecdsa.PrivateKey) *EVMSigner {
	return &EVMSigner{privateKey: key}
}

// Scheme implements Signer.
func (s *EVMSigner) Scheme() string {
	return SchemeEIP191
}

// Publisher returns the checksummed address.
func (s *EVMSigner) Publisher() string {
	return GetAddress(s.privateKey)
}

// Sign hashes body as "\x19Ethereum Signed Message:\n" + len + body and
// returns the 65-byte signature as 0x hex with v in {27, 28}.
func (s *EVMSigner) Sign(body []byte) (string, error) {
	signature, err := crypto.Sign(accounts.TextHash(body), s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	if signature[crypto.RecoveryIDOffset] < 27 {
		signature[crypto.RecoveryIDOffset] += 27
	}
	return hexutil.Encode(signature), nil
}

func verifyEIP191(publisher string, body []byte, signature string) error {
	if !common.IsHexAddress(publisher) {
		return fmt.Errorf("invalid publisher address %q", publisher)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length: expected %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(body), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	recovered := crypto.PubkeyToAddress(*pub)
	if !bytes.Equal(recovered.Bytes(), common.HexToAddress(publisher).Bytes()) {
		return ErrBadSignature
	}
	return nil
}
