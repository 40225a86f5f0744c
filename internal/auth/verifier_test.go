package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cherseta/chersey/internal/logger"
)

func TestPassthrough(t *testing.T) {
	p := NewPassthrough(logger.NewNop())

	uid, err := p.Verify(context.Background(), Credentials{UID: "abc"})
	if err != nil || uid != "abc" {
		t.Errorf("Verify = %q, %v", uid, err)
	}
	uid, _ = p.Verify(context.Background(), Credentials{})
	if uid != GuestUID {
		t.Errorf("Verify(empty) = %q, want %q", uid, GuestUID)
	}
}

func toolkitServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "api-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["idToken"] != "good" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"INVALID_ID_TOKEN"}}`)
			return
		}
		io.WriteString(w, `{"users":[{"localId":"firebase-uid"}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIdentityToolkit(t *testing.T) {
	v := NewIdentityToolkit("api-key", time.Second)
	v.url = toolkitServer(t).URL

	uid, err := v.Verify(context.Background(), Credentials{IDToken: "good"})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if uid != "firebase-uid" {
		t.Errorf("uid = %q", uid)
	}
}

func TestIdentityToolkitRejects(t *testing.T) {
	v := NewIdentityToolkit("api-key", time.Second)
	v.url = toolkitServer(t).URL

	tests := []Credentials{
		{IDToken: "forged"},
		{},
		{IDToken: "good", UID: "someone-else"},
	}
	for _, creds := range tests {
		if _, err := v.Verify(context.Background(), creds); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%+v) err = %v, want ErrInvalidToken", creds, err)
		}
	}
}

func TestNewSelectsVerifier(t *testing.T) {
	if _, ok := New("", logger.NewNop()).(*Passthrough); !ok {
		t.Error("expected Passthrough without api key")
	}
	if _, ok := New("k", logger.NewNop()).(*IdentityToolkit); !ok {
		t.Error("expected IdentityToolkit with api key")
	}
}
