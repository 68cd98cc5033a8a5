package game

import (
	"crypto/ed25519"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
)

// Keys - credentials of a game instance. SignKeys is held by a playing client,
// VerifyOnlyKeys by a server replaying a finished match.
type Keys interface {
	MyPublicKey() ed25519.PublicKey
	OpponentPublicKey() ed25519.PublicKey

	keys()
}

// SignKeys - my private key and the opponent's public key.
type SignKeys struct {
	My       ed25519.PrivateKey
	Opponent ed25519.PublicKey
}

// VerifyOnlyKeys - both public keys, no signer.
type VerifyOnlyKeys struct {
	My       ed25519.PublicKey
	Opponent ed25519.PublicKey
}

func (that SignKeys) MyPublicKey() ed25519.PublicKey {
	public, _ := that.My.Public().(ed25519.PublicKey)
	return public
}

func (that SignKeys) OpponentPublicKey() ed25519.PublicKey { return that.Opponent }

func (SignKeys) keys() {}

func (that VerifyOnlyKeys) MyPublicKey() ed25519.PublicKey { return that.My }

func (that VerifyOnlyKeys) OpponentPublicKey() ed25519.PublicKey { return that.Opponent }

func (VerifyOnlyKeys) keys() {}

// Sign - signs message with my key. VerifyOnlyKeys can't sign.
func Sign(keys Keys, message []byte) ([]byte, error) {
	switch k := keys.(type) {
	case SignKeys:
		return ed25519.Sign(k.My, message), nil
	case *SignKeys:
		return ed25519.Sign(k.My, message), nil
	default:
		return nil, apperror.ErrVerifyOnly
	}
}

// Verify - reports whether signature is valid for message under public.
func Verify(public ed25519.PublicKey, message, signature []byte) bool {
	if len(public) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(public, message, signature)
}
