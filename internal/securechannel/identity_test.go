package securechannel

import (
	"errors"
	"strings"
	"testing"
)

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		key      string
		wantErr  bool
	}{
		{name: "valid lower", identity: "app", key: "0123456789abcdef0123456789abcdef"},
		{name: "valid upper", identity: "app", key: "0123456789ABCDEF0123456789ABCDEF"},
		{name: "empty identity", identity: "", key: "0123456789abcdef0123456789abcdef", wantErr: true},
		{name: "short key", identity: "app", key: "0123456789abcdef", wantErr: true},
		{name: "long key", identity: "app", key: strings.Repeat("a", 34), wantErr: true},
		{name: "not hex", identity: "app", key: strings.Repeat("zz", 16), wantErr: true},
		{name: "empty key", identity: "app", key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentity(tt.identity, tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("NewIdentity() error = %v, want ErrInvalidKey", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewIdentity() error = %v", err)
			}
			if len(id.key) != KeySize {
				t.Errorf("key length = %d, want %d", len(id.key), KeySize)
			}
		})
	}
}

func TestIdentity_Zero(t *testing.T) {
	id, err := NewIdentity("app", "ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("NewIdentity() error = %v", err)
	}
	key := id.key

	id.Zero()

	for i, b := range key {
		if b != 0 {
			t.Fatalf("key[%d] = 0x%02x after Zero()", i, b)
		}
	}
	if _, err := id.pskFor(nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("pskFor() after Zero() error = %v, want ErrInvalidKey", err)
	}
}

func TestIdentity_StringOmitsKey(t *testing.T) {
	id, _ := NewIdentity("abcdefghijklmnop", "0123456789abcdef0123456789abcdef")
	if got := id.String(); got != "abcdefgh..." {
		t.Errorf("String() = %q, want %q", got, "abcdefgh...")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnconnected, "unconnected"},
		{StateSocketBound, "socket_bound"},
		{StateHandshakeInFlight, "handshake_in_flight"},
		{StateEstablished, "established"},
		{StateClosed, "closed"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
	if !StateFailed.Terminal() || StateEstablished.Terminal() {
		t.Error("Terminal() mismatch")
	}
}
