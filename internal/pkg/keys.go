package pkg

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidSignature = errors.New("invalid signature encoding")
)

// Keys and signatures travel as standard base64 without padding.
var encoding = base64.RawStdEncoding

func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

func decode(s string) ([]byte, error) {
	return encoding.DecodeString(strings.TrimRight(s, "="))
}

// ParsePublicKey - decodes a 32 byte Ed25519 public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes", ErrInvalidKey, len(raw))
	}

	return raw, nil
}

// ParsePrivateKey - decodes a 32 byte Ed25519 seed into a private key.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: private key is %d bytes", ErrInvalidKey, len(raw))
	}

	return ed25519.NewKeyFromSeed(raw), nil
}

// ParseSignature - decodes a 64 byte Ed25519 signature.
func ParseSignature(s string) ([]byte, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if len(raw) != ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes", ErrInvalidSignature, len(raw))
	}

	return raw, nil
}

// EncodePrivateKey - encodes the seed of key, the form ParsePrivateKey reads.
func EncodePrivateKey(key ed25519.PrivateKey) string {
	return Encode(key.Seed())
}

// VerifyString - checks a base64 signature over message under a base64 public key.
func VerifyString(publicKey, message, signature string) (bool, error) {
	public, err := ParsePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	sig, err := ParseSignature(signature)
	if err != nil {
		return false, err
	}

	return ed25519.Verify(public, []byte(message), sig), nil
}
