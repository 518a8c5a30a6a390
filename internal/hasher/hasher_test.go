package hasher

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the suite fast; parameters are read back from the digest.
var cheap = Params{Memory: 64, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestHash_Format(t *testing.T) {
	digest, err := New(cheap).Hash("blueFLAMINGO")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=64,t=1,p=1$"), digest)
	assert.NotContains(t, digest, "blueFLAMINGO")
	assert.True(t, IsDigest(digest))
}

func TestHash_DefaultParams(t *testing.T) {
	digest, err := Default().Hash("pw")
	require.NoError(t, err)
	assert.Contains(t, digest, "$m=19456,t=2,p=1$")
}

func TestHash_NonDeterministic(t *testing.T) {
	h := New(cheap)
	d1, err := h.Hash("same input")
	require.NoError(t, err)
	d2, err := h.Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)

	for _, d := range []string{d1, d2} {
		ok, err := Verify(d, "same input")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHash_EntropyFailure(t *testing.T) {
	h := &Hasher{params: cheap, rand: failingReader{}}
	_, err := h.Hash("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read salt")
}

func TestVerify(t *testing.T) {
	h := New(cheap)
	tests := []struct {
		name      string
		stored    string
		candidate string
		want      bool
	}{
		{"match", "blueFLAMINGO", "blueFLAMINGO", true},
		{"mismatch", "blueFLAMINGO", "wrongguess", false},
		{"case sensitive", "blueFLAMINGO", "blueflamingo", false},
		{"empty plaintext", "", "", true},
		{"empty candidate", "83dK$#d)", "", false},
		{"unicode", "пароль🔑", "пароль🔑", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(tt.stored)
			require.NoError(t, err)

			got, err := Verify(digest, tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	valid, err := New(cheap).Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")
	longKey := base64.RawStdEncoding.EncodeToString(make([]byte, 1024))

	cases := map[string]string{
		"empty":            "",
		"plaintext":        "blueFLAMINGO",
		"bcrypt":           "$2a$14$ajq8Q7fbtFRQvXpdCq7Jcuy.Rx1h/L4J60Otx.gyNLbAYctGMJ9tK",
		"argon2i":          strings.Replace(valid, "$argon2id$", "$argon2i$", 1),
		"wrong version":    strings.Replace(valid, "$v=19$", "$v=16$", 1),
		"missing param":    strings.Join([]string{"", parts[1], parts[2], "m=64,t=1", parts[4], parts[5]}, "$"),
		"duplicate param":  strings.Join([]string{"", parts[1], parts[2], "m=64,m=64,t=1", parts[4], parts[5]}, "$"),
		"unknown param":    strings.Join([]string{"", parts[1], parts[2], "m=64,t=1,x=1", parts[4], parts[5]}, "$"),
		"zero time":        strings.Join([]string{"", parts[1], parts[2], "m=64,t=0,p=1", parts[4], parts[5]}, "$"),
		"huge memory":      strings.Join([]string{"", parts[1], parts[2], "m=4294967295,t=1,p=1", parts[4], parts[5]}, "$"),
		"costly memory":    strings.Join([]string{"", parts[1], parts[2], "m=4194304,t=1,p=1", parts[4], parts[5]}, "$"),
		"costly passes":    strings.Join([]string{"", parts[1], parts[2], "m=64,t=64,p=1", parts[4], parts[5]}, "$"),
		"many lanes":       strings.Join([]string{"", parts[1], parts[2], "m=4096,t=1,p=255", parts[4], parts[5]}, "$"),
		"all costs high":   strings.Join([]string{"", parts[1], parts[2], "m=4194304,t=64,p=255", parts[4], longKey}, "$"),
		"long key":         strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], longKey}, "$"),
		"long salt":        strings.Join([]string{"", parts[1], parts[2], parts[3], longKey, parts[5]}, "$"),
		"bad salt":         strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"short key":        strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], "AAAA"}, "$"),
		"truncated":        valid[:len(valid)-len(parts[5])-1],
		"no leading empty": strings.TrimPrefix(valid, "$"),
	}
	for name, digest := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := Verify(digest, "pw")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDigest), "got %v", err)
			assert.False(t, ok)
			assert.False(t, IsDigest(digest))
		})
	}
}

func TestParse_AcceptsUpperBounds(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString(make([]byte, maxSaltLen))
	key := base64.RawStdEncoding.EncodeToString(make([]byte, maxKeyLen))
	digest := "$argon2id$v=19$m=262144,t=10,p=16$" + salt + "$" + key

	assert.True(t, IsDigest(digest))
}

func TestVerify_UsesEmbeddedParams(t *testing.T) {
	digest, err := New(Params{Memory: 128, Time: 2, Parallelism: 2, SaltLen: 8, KeyLen: 16}).Hash("pw")
	require.NoError(t, err)

	ok, err := Verify(digest, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}
