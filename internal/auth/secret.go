package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/sandbox-tools/internal/apperror"
)

const defaultCost = 12

// HashSecret returns the bcrypt hash of a client secret, for use in configuration.
func HashSecret(secret string) (string, error) {
	return hashSecretWithCost(secret, defaultCost)
}

func hashSecretWithCost(secret string, cost int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("auth: secret must not be empty")
	}
	// bcrypt ignores everything past 72 bytes.
	if len(secret) > 72 {
		return "", fmt.Errorf("auth: secret must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing secret: %w", err)
	}
	return string(hashed), nil
}

// Clients maps client ids to bcrypt hashes of their secrets.
type Clients map[string]string

// Authenticate checks secret against the stored hash for clientID and returns
// an apperror.ErrUnauthorized on any mismatch.
func (c Clients) Authenticate(clientID, secret string) error {
	hash, ok := c[clientID]
	if !ok {
		// Burn comparable time so unknown ids are not distinguishable.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(secret))
		return apperror.Unauthorized("invalid client credentials")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.Unauthorized("invalid client credentials")
		}
		return fmt.Errorf("auth: comparing secret hash: %w", err)
	}
	return nil
}

// dummyHash is compared against when the client id is unknown.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("sandbox-tools-unknown-client"), defaultCost)
	return h
})
