package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "0190a7e2-7c3b-7d11-9c6f-2b1a4a5d8e01"

func TestParseTicket(t *testing.T) {
	tk, err := ParseTicket("127.0.0.1:7878/" + testSessionID)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7878", tk.Addr)
	assert.Equal(t, testSessionID, tk.SessionID)
	assert.Equal(t, "127.0.0.1:7878/"+testSessionID, tk.String())
}

func TestParseTicket_IPv6(t *testing.T) {
	tk, err := ParseTicket("[::1]:7878/" + testSessionID)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:7878", tk.Addr)
}

func TestParseTicket_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no slash", "127.0.0.1:7878", "want host:port/session-id"},
		{"no port", "localhost/" + testSessionID, "missing port"},
		{"bad id", "localhost:7878/not-a-uuid", "session id"},
		{"empty", "", "want host:port/session-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTicket(tt.input)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestNormalizeName(t *testing.T) {
	// e followed by a combining acute composes to U+00E9.
	assert.Equal(t, "Ren\u00e9", NormalizeName("  Rene\u0301 "))
	assert.Equal(t, "bob", NormalizeName("bob"))

	long := strings.Repeat("ж", MaxNameLength+10)
	assert.Equal(t, []rune(long)[:MaxNameLength], []rune(NormalizeName(long)))
}

func TestHelloCheck(t *testing.T) {
	h := Hello{Version: ProtocolVersion, SessionID: testSessionID}
	assert.NoError(t, h.check(testSessionID))

	err := h.check("other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")

	h.Version = 99
	err = h.check(testSessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 99")
}
