package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultPlayerName = "Anonymous"

type Player struct {
	ID        uuid.UUID `json:"id"`
	PublicKey string    `json:"public_key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials - a freshly generated key pair handed out on signup.
type Credentials struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}
