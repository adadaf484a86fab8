package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const solanaKeypairLen = 64

// LoadSolanaKeypair reads a Solana keypair file. Both the CLI JSON byte
// array and a base58 string are accepted.
func LoadSolanaKeypair(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil {
		return newSolanaKey(keyBytes)
	}

	return LoadSolanaKeypairFromBase58(string(data))
}

// LoadSolanaKeypairFromBase58 parses a base58 encoded keypair.
func LoadSolanaKeypairFromBase58(encoded string) (solana.PrivateKey, error) {
	decoded, err := base58.Decode(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid keypair format: not JSON array or base58 encoded")
	}
	return newSolanaKey(decoded)
}

func newSolanaKey(keyBytes []byte) (solana.PrivateKey, error) {
	if len(keyBytes) != solanaKeypairLen {
		return nil, fmt.Errorf("invalid keypair length: expected %d bytes, got %d", solanaKeypairLen, len(keyBytes))
	}
	return solana.PrivateKey(keyBytes), nil
}

// GetSolanaAddress returns the base58 public key for a Solana private key.
func GetSolanaAddress(privateKey solana.PrivateKey) string {
	return privateKey.PublicKey().String()
}
