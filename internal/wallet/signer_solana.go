package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SolanaSigner signs raw bodies with an ed25519 Solana keypair.
type SolanaSigner struct {
	privateKey solana.PrivateKey
}

// NewSolanaSigner creates a signer from a 64-byte Solana keypair.
func NewSolanaSigner(privateKey solana.PrivateKey) *SolanaSigner {
	return &SolanaSigner{privateKey: privateKey}
}

// Scheme implements Signer.
func (s *SolanaSigner) Scheme() string {
	return SchemeEd25519
}

// Publisher returns the base58 public key.
func (s *SolanaSigner) Publisher() string {
	return GetSolanaAddress(s.privateKey)
}

// Sign returns the base58 ed25519 signature over body.
func (s *SolanaSigner) Sign(body []byte) (string, error) {
	sig, err := s.privateKey.Sign(body)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	return sig.String(), nil
}

func verifyEd25519(publisher string, body []byte, signature string) error {
	pub, err := solana.PublicKeyFromBase58(publisher)
	if err != nil {
		return fmt.Errorf("invalid publisher address: %w", err)
	}
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if !sig.Verify(pub, body) {
		return ErrBadSignature
	}
	return nil
}
