package securechannel

import (
	"encoding/hex"
	"fmt"
)

// KeySize is the pre-shared key length in bytes.
const KeySize = 16

// Identity is the pre-shared identity and key material of one session.
//
// The key bytes are owned by the Identity and zeroed by Zero. The String
// method never includes the key.
type Identity struct {
	name string
	key  []byte
}

// NewIdentity validates and decodes identity material.
//
// Parameters:
//   - name: Identity string (the bridge application username)
//   - hexKey: Pre-shared key as 32 hexadecimal characters
//
// Returns:
//   - *Identity: Decoded identity
//   - error: ErrInvalidKey if name is empty or hexKey is malformed
func NewIdentity(name, hexKey string) (*Identity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty identity", ErrInvalidKey)
	}
	if len(hexKey) != 2*KeySize {
		return nil, fmt.Errorf("%w: key must be %d hex characters, got %d",
			ErrInvalidKey, 2*KeySize, len(hexKey))
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not hexadecimal", ErrInvalidKey)
	}
	return &Identity{name: name, key: key}, nil
}

// Name returns the identity string.
func (id *Identity) Name() string {
	return id.name
}

// String returns a short, loggable prefix of the identity.
func (id *Identity) String() string {
	if len(id.name) <= 8 {
		return id.name
	}
	return id.name[:8] + "..."
}

// pskFor is the DTLS PSK callback. The hint is ignored since a bridge only
// ever has one key per identity.
func (id *Identity) pskFor(_ []byte) ([]byte, error) {
	if len(id.key) != KeySize {
		return nil, ErrInvalidKey
	}
	return id.key, nil
}

// Zero overwrites the key bytes. The Identity is unusable afterwards.
func (id *Identity) Zero() {
	for i := range id.key {
		id.key[i] = 0
	}
	id.key = nil
}
