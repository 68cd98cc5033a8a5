package matchmaking

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/rocketscienceinc/knucklebones-backend/internal/pkg"
)

// Ticket - the facts of a pairing the server vouches for. InitiatorKey is the
// key of the paired side told initiator=true, which is also the side that
// starts the game.
type Ticket struct {
	Seed         uint64
	Time         uint64
	InitiatorKey string
	OtherKey     string
}

// Payload - "{seed}:{time}:{initiator key}:{other key}".
func (that Ticket) Payload() []byte {
	return []byte(strconv.FormatUint(that.Seed, 10) + ":" + strconv.FormatUint(that.Time, 10) + ":" +
		that.InitiatorKey + ":" + that.OtherKey)
}

// TicketSigner - the server key that signs pairing tickets.
type TicketSigner struct {
	mu  sync.Mutex
	key ed25519.PrivateKey
}

func NewTicketSigner(key ed25519.PrivateKey) *TicketSigner {
	return &TicketSigner{key: key}
}

// LoadTicketSigner - reads the key seed from path, creating the file with a
// random seed when it does not exist.
func LoadTicketSigner(path string) (*TicketSigner, error) {
	seed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		seed = make([]byte, ed25519.SeedSize)
		if _, err = rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate server key: %w", err)
		}

		if err = os.WriteFile(path, seed, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write server key: %w", err)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read server key: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("server key file has %d bytes, want %d", len(seed), ed25519.SeedSize)
	}

	return NewTicketSigner(ed25519.NewKeyFromSeed(seed)), nil
}

// Sign - returns the base64 signature of ticket.
func (that *TicketSigner) Sign(ticket Ticket) string {
	payload := ticket.Payload()

	that.mu.Lock()
	signature := ed25519.Sign(that.key, payload)
	that.mu.Unlock()

	return pkg.Encode(signature)
}

// Verify - checks a base64 ticket signature.
func (that *TicketSigner) Verify(ticket Ticket, signature string) bool {
	raw, err := pkg.ParseSignature(signature)
	if err != nil {
		return false
	}

	return ed25519.Verify(that.PublicKey(), ticket.Payload(), raw)
}

func (that *TicketSigner) PublicKey() ed25519.PublicKey {
	that.mu.Lock()
	defer that.mu.Unlock()

	public, _ := that.key.Public().(ed25519.PublicKey)

	return public
}
