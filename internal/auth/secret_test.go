package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/sandbox-tools/internal/apperror"
)

func testClients(t *testing.T) Clients {
	t.Helper()
	hash, err := hashSecretWithCost("s3cret-value", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashSecretWithCost() error = %v", err)
	}
	return Clients{"agent-1": hash}
}

func TestHashSecret_Rejects(t *testing.T) {
	if _, err := hashSecretWithCost("", bcrypt.MinCost); err == nil {
		t.Error("empty secret should be rejected")
	}
	if _, err := hashSecretWithCost(strings.Repeat("a", 73), bcrypt.MinCost); err == nil {
		t.Error("secret over 72 bytes should be rejected")
	}
}

func TestHashSecret_IsSalted(t *testing.T) {
	h1, _ := hashSecretWithCost("same", bcrypt.MinCost)
	h2, _ := hashSecretWithCost("same", bcrypt.MinCost)
	if h1 == h2 {
		t.Error("hashing the same secret twice produced identical hashes")
	}
}

func TestAuthenticate(t *testing.T) {
	clients := testClients(t)

	tests := []struct {
		name     string
		clientID string
		secret   string
		wantErr  bool
	}{
		{name: "valid", clientID: "agent-1", secret: "s3cret-value"},
		{name: "wrong secret", clientID: "agent-1", secret: "nope", wantErr: true},
		{name: "unknown client", clientID: "agent-2", secret: "s3cret-value", wantErr: true},
		{name: "empty secret", clientID: "agent-1", secret: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := clients.Authenticate(tt.clientID, tt.secret)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Authenticate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}
