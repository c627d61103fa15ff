package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base     string
		path     string
		expected string
	}{
		{"http://localhost:8000", "/.well-known/agent.json", "http://localhost:8000/.well-known/agent.json"},
		{"http://localhost:8000/", "/.well-known/agent.json", "http://localhost:8000/.well-known/agent.json"},
		{"http://localhost:8000/", "rpc", "http://localhost:8000/rpc"},
		{"http://localhost:8000", "", "http://localhost:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.base+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinURL(tt.base, tt.path))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 0))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", *StringPtr("x"))
	assert.Equal(t, 3, *Ptr(3))
}
