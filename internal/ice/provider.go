package ice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

const (
	ProviderGoogle     = "google"
	ProviderCloudflare = "cloudflare"

	cloudflareURL = "https://rtc.live.cloudflare.com/v1/turn/keys/%s/credentials/generate"
	credentialTTL = 900
)

var ErrUnexpectedStatus = errors.New("unexpected status from ice provider")

// Google - public STUN servers, no credentials.
type Google struct{}

func (Google) Servers(context.Context) (entity.ICEServers, error) {
	return entity.ICEServers{
		URLs: []string{
			"stun:stun.l.google.com:19302",
			"stun:stun1.l.google.com:19302",
			"stun:stun2.l.google.com:19302",
		},
	}, nil
}

// Cloudflare - short lived TURN credentials from the Cloudflare Calls API.
type Cloudflare struct {
	client   *http.Client
	endpoint string
	apiToken string
}

func NewCloudflare(tokenID, apiToken string) *Cloudflare {
	return &Cloudflare{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: fmt.Sprintf(cloudflareURL, tokenID),
		apiToken: apiToken,
	}
}

type cloudflareResponse struct {
	ICEServers entity.ICEServers `json:"iceServers"`
}

func (that *Cloudflare) Servers(ctx context.Context) (entity.ICEServers, error) {
	body, err := json.Marshal(map[string]int{"ttl": credentialTTL})
	if err != nil {
		return entity.ICEServers{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.endpoint, bytes.NewReader(body))
	if err != nil {
		return entity.ICEServers{}, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+that.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.client.Do(req)
	if err != nil {
		return entity.ICEServers{}, fmt.Errorf("failed to request turn credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return entity.ICEServers{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var decoded cloudflareResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return entity.ICEServers{}, fmt.Errorf("failed to decode turn credentials: %w", err)
	}

	return decoded.ICEServers, nil
}

// Provider - source of ICE servers handed to paired clients.
type Provider interface {
	Servers(ctx context.Context) (entity.ICEServers, error)
}

// New - returns the provider configured by name.
func New(name, tokenID, apiToken string) (Provider, error) {
	switch name {
	case "", ProviderGoogle:
		return Google{}, nil
	case ProviderCloudflare:
		if tokenID == "" || apiToken == "" {
			return nil, errors.New("cloudflare ice provider needs a token id and an api token")
		}

		return NewCloudflare(tokenID, apiToken), nil
	default:
		return nil, fmt.Errorf("unknown ice provider %q", name)
	}
}
