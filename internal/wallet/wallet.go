// Package wallet loads publisher keys and signs registration bodies so the
// registry can attribute a submission to a wallet address.
package wallet

import (
	"bufio"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

// EnvPrivateKey holds a hex EVM key when no flag is given.
const EnvPrivateKey = "WAU_PRIVATE_KEY"

// ErrEmptyInput is returned when a reader holds no key.
var ErrEmptyInput = errors.New("empty input")

// ErrNoKeySource is returned when no key source is configured.
var ErrNoKeySource = errors.New("no key source provided (use --keystore, --wallet, --solana-keypair or " + EnvPrivateKey + ")")

// Source names where a publisher key comes from. The first non-empty
// field wins, in field order.
type Source struct {
	Keystore      string
	HexKey        string
	SolanaKeypair string
	Stdin         io.Reader
}

// Empty reports whether no source is set.
func (s Source) Empty() bool {
	return s.Keystore == "" && s.HexKey == "" && s.SolanaKeypair == "" && s.Stdin == nil
}

// LoadSigner resolves src into a Signer. The environment variable
// EnvPrivateKey is consulted before stdin.
func LoadSigner(src Source) (Signer, error) {
	switch {
	case src.Keystore != "":
		key, err := LoadFromKeystore(src.Keystore, func() (string, error) {
			return PromptPassword("Enter keystore password: ")
		})
		if err != nil {
			return nil, err
		}
		return NewEVMSigner(key), nil
	case src.HexKey != "":
		key, err := LoadFromHex(src.HexKey)
		if err != nil {
			return nil, err
		}
		return NewEVMSigner(key), nil
	case src.SolanaKeypair != "":
		key, err := LoadSolanaKeypair(src.SolanaKeypair)
		if err != nil {
			return nil, err
		}
		return NewSolanaSigner(key), nil
	}

	if envKey := os.Getenv(EnvPrivateKey); envKey != "" {
		key, err := LoadFromHex(envKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvPrivateKey, err)
		}
		return NewEVMSigner(key), nil
	}

	if src.Stdin != nil {
		key, err := LoadFromReader(src.Stdin)
		if err != nil {
			return nil, err
		}
		return NewEVMSigner(key), nil
	}

	return nil, ErrNoKeySource
}

// LoadFromKeystore decrypts a Web3 Secret Storage keystore file. password
// is called only after the file has been read.
func LoadFromKeystore(path string, password func() (string, error)) (*ecdsa.PrivateKey, error) {
	keystoreJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore file: %w", err)
	}

	pass, err := password()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	key, err := keystore.DecryptKey(keystoreJSON, pass)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore (wrong password?): %w", err)
	}
	return key.PrivateKey, nil
}

// LoadFromHex parses a hex private key, with or without 0x prefix.
func LoadFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex private key: %w", err)
	}

	privateKey, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// LoadFromReader reads a hex key from the first line of r.
func LoadFromReader(r io.Reader) (*ecdsa.PrivateKey, error) {
	if f, ok := r.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return nil, fmt.Errorf("no private key piped to stdin")
		}
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("failed to read private key: %w", ErrEmptyInput)
	}
	return LoadFromHex(line)
}

// PromptPassword prompts on stderr and reads a password without echo.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(passwordBytes), nil
}

// GetAddress returns the checksummed Ethereum address for a private key.
func GetAddress(privateKey *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}
