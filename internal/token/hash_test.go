package token_test

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/avsoftware/notes-backend/internal/token"
)

func TestHash_Deterministic(t *testing.T) {
	const raw = "some-refresh-token"

	if token.Hash(raw) != token.Hash(raw) {
		t.Error("same input produced different hashes")
	}
}

func TestHash_DistinctInputs_DistinctOutputs(t *testing.T) {
	seen := make(map[string]string)
	for i := 0; i < 100; i++ {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			t.Fatalf("rand: %v", err)
		}
		raw := hex.EncodeToString(b)

		h := token.Hash(raw)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision: %q and %q both hash to %q", prev, raw, h)
		}
		seen[h] = raw
	}
}

func TestHash_FixedLength(t *testing.T) {
	// base64(SHA-256) is always 44 characters.
	for _, raw := range []string{"", "a", "a-much-longer-input-string-than-the-others"} {
		if got := len(token.Hash(raw)); got != 44 {
			t.Errorf("len(Hash(%q)) = %d, want 44", raw, got)
		}
	}
}
