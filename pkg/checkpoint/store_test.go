package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateThreadID(t *testing.T) {
	tests := []struct {
		name     string
		threadID string
		wantErr  bool
	}{
		{"simple", "wiki-session", false},
		{"uuid style", "0b9f3c1e-9a0b-4d8a-8f2e-1c7d1a2b3c4d", false},
		{"dots allowed singly", "user.alpha", false},
		{"empty", "", true},
		{"parent traversal", "../etc", true},
		{"forward slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateThreadID(tt.threadID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
