package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"logiscore/internal/config"

	"github.com/google/uuid"
)

// fakeTransit implements the handful of transit endpoints the client calls.
// "Encryption" is a reversible prefix so tests can assert round trips.
type fakeTransit struct {
	mu      sync.Mutex
	mounted bool
	keys    map[string]bool
}

func (f *fakeTransit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("X-Vault-Token") != "test-token" {
		http.Error(w, `{"errors":["permission denied"]}`, http.StatusForbidden)
		return
	}

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/v1/sys/mounts" && r.Method == http.MethodGet:
		mounts := map[string]interface{}{}
		if f.mounted {
			mounts["transit/"] = map[string]interface{}{"type": "transit"}
		}
		resp := map[string]interface{}{"data": mounts}
		for k, v := range mounts {
			resp[k] = v
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.URL.Path == "/v1/sys/mounts/transit":
		f.mounted = true
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(r.URL.Path, "/v1/transit/keys/"):
		f.keys[strings.TrimPrefix(r.URL.Path, "/v1/transit/keys/")] = true
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(r.URL.Path, "/v1/transit/encrypt/"):
		plaintext, _ := body["plaintext"].(string)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"ciphertext": "vault:v1:" + plaintext},
		})
	case strings.HasPrefix(r.URL.Path, "/v1/transit/decrypt/"):
		ciphertext, _ := body["ciphertext"].(string)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"plaintext": strings.TrimPrefix(ciphertext, "vault:v1:")},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeTransit) {
	t.Helper()

	fake := &fakeTransit{keys: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), config.VaultConfig{
		Address:      srv.URL,
		Token:        "test-token",
		TransitMount: "transit",
		KeyName:      "reviewer-identity",
		Enabled:      true,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c, fake
}

func TestNewClientMountsTransitAndCreatesKey(t *testing.T) {
	_, fake := newTestClient(t)

	if !fake.mounted {
		t.Error("expected transit engine to be mounted")
	}
	if !fake.keys["reviewer-identity"] {
		t.Error("expected reviewer key to be created")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	userID := uuid.New()

	sealed, err := c.Seal(ctx, userID)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if strings.Contains(sealed, userID.String()) {
		t.Error("sealed value must not contain the plaintext user id")
	}

	opened, err := c.Open(ctx, sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != userID {
		t.Errorf("expected %s, got %s", userID, opened)
	}
}

func TestOpenRejectsNonUUIDPlaintext(t *testing.T) {
	c, _ := newTestClient(t)

	// base64("hello")
	if _, err := c.Open(context.Background(), "vault:v1:aGVsbG8="); err == nil {
		t.Error("expected error for plaintext that is not a user id")
	}
}
