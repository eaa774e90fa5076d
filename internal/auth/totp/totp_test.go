package totp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "JBSWY3DPEHPK3PXP"

// Middle of a step so that ±Period lands squarely on the neighbouring steps.
var at = time.Unix(1_700_000_015, 0)

func codeAt(t *testing.T, ts time.Time) string {
	t.Helper()
	c, err := Code(secret, ts)
	require.NoError(t, err)
	require.Len(t, c, 6)
	return c
}

func TestVerifyAt_Window(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "current step", offset: 0, want: true},
		{name: "previous step", offset: -Period, want: true},
		{name: "next step", offset: Period, want: true},
		{name: "two steps back", offset: -2 * Period, want: false},
		{name: "two steps ahead", offset: 2 * Period, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := codeAt(t, at.Add(tt.offset))
			assert.Equal(t, tt.want, VerifyAt(secret, code, at))
		})
	}
}

func TestVerifyAt_NormalizesWhitespace(t *testing.T) {
	code := codeAt(t, at)
	spaced := code[:3] + " " + code[3:]

	assert.True(t, VerifyAt("JBSW Y3DP EHPK 3PXP", code, at))
	assert.True(t, VerifyAt(secret, " "+spaced+"\n", at))
	assert.True(t, VerifyAt("jbswy3dpehpk3pxp", code, at))
}

func TestVerifyAt_MalformedInputFails(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		candidate string
	}{
		{name: "empty candidate", secret: secret, candidate: ""},
		{name: "too short", secret: secret, candidate: "12345"},
		{name: "too long", secret: secret, candidate: "1234567"},
		{name: "non numeric", secret: secret, candidate: "abcdef"},
		{name: "empty secret", secret: "", candidate: "123456"},
		{name: "invalid base32 secret", secret: "not base32 !!", candidate: "123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyAt(tt.secret, tt.candidate, at))
		})
	}
}

func TestVerifier_UsesInjectedClock(t *testing.T) {
	v := Verifier{Now: func() time.Time { return at }}
	assert.True(t, v.Verify(secret, codeAt(t, at)))
	assert.False(t, v.Verify(secret, codeAt(t, at.Add(-3*Period))))
}
