// Package auth verifies client identity tokens.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cherseta/chersey/internal/logger"
)

// ErrInvalidToken is returned for a token the identity provider rejects.
var ErrInvalidToken = errors.New("invalid identity token")

// GuestUID is returned by Passthrough when the client sends no uid.
const GuestUID = "guest_user"

// Credentials is what a client presents at login.
type Credentials struct {
	IDToken string `json:"idToken"`
	UID     string `json:"uid"`
}

// Verifier resolves credentials to a verified uid.
type Verifier interface {
	Verify(ctx context.Context, creds Credentials) (string, error)
}

// Passthrough trusts the client-supplied uid. It exists for local
// development only and logs a warning on every call.
type Passthrough struct {
	log logger.Logger
}

// NewPassthrough creates a Passthrough verifier.
func NewPassthrough(log logger.Logger) *Passthrough {
	return &Passthrough{log: log}
}

func (p *Passthrough) Verify(ctx context.Context, creds Credentials) (string, error) {
	uid := creds.UID
	if uid == "" {
		uid = GuestUID
	}
	p.log.Warn("identity not verified, trusting client uid", logger.String("uid", uid))
	return uid, nil
}

const lookupAPI = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// IdentityToolkit verifies Firebase ID tokens with the accounts:lookup API.
type IdentityToolkit struct {
	apiKey string
	url    string
	client *http.Client
}

// NewIdentityToolkit creates a verifier for the project owning apiKey.
func NewIdentityToolkit(apiKey string, timeout time.Duration) *IdentityToolkit {
	return &IdentityToolkit{
		apiKey: apiKey,
		url:    lookupAPI,
		client: &http.Client{Timeout: timeout},
	}
}

func (v *IdentityToolkit) Verify(ctx context.Context, creds Credentials) (string, error) {
	if creds.IDToken == "" {
		return "", fmt.Errorf("missing id token: %w", ErrInvalidToken)
	}

	body, err := json.Marshal(map[string]string{"idToken": creds.IDToken})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", v.url+"?key="+url.QueryEscape(v.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity toolkit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return "", ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("identity toolkit status %d: %s", resp.StatusCode, msg)
	}

	var result struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Users) == 0 || result.Users[0].LocalID == "" {
		return "", ErrInvalidToken
	}

	uid := result.Users[0].LocalID
	if creds.UID != "" && creds.UID != uid {
		return "", fmt.Errorf("uid does not match token: %w", ErrInvalidToken)
	}
	return uid, nil
}

// New returns an IdentityToolkit verifier when apiKey is set, otherwise a
// Passthrough.
func New(apiKey string, log logger.Logger) Verifier {
	if apiKey == "" {
		log.Warn("FIREBASE_API_KEY not set: /verify-token accepts any uid")
		return NewPassthrough(log)
	}
	return NewIdentityToolkit(apiKey, 10*time.Second)
}
