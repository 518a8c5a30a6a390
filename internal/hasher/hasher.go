// Package hasher implements the one-way password hashing used by the vault:
// Argon2id digests encoded as PHC strings, and constant-time verification of
// a plaintext against such a digest.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithm = "argon2id"

// Bounds accepted when parsing a digest. Anything outside is treated as
// corrupt rather than fed to the key derivation.
const (
	maxMemory      = 1 << 18 // KiB, 256 MiB
	maxTime        = 10
	maxParallelism = 16
	minSaltLen     = 8
	maxSaltLen     = 64
	minKeyLen      = 16
	maxKeyLen      = 64
)

// ErrMalformedDigest is returned by Verify when the stored value was not
// produced by Hash. It is distinct from a password mismatch.
var ErrMalformedDigest = errors.New("malformed digest")

// Params holds the Argon2id cost parameters.
type Params struct {
	// Memory is the memory cost in KiB.
	Memory uint32
	// Time is the number of passes.
	Time uint32
	// Parallelism is the number of lanes.
	Parallelism uint8
	// SaltLen is the length of the random salt in bytes.
	SaltLen int
	// KeyLen is the length of the derived key in bytes.
	KeyLen uint32
}

// DefaultParams follow the OWASP minimum for Argon2id (m=19456, t=2, p=1).
var DefaultParams = Params{
	Memory:      19 * 1024,
	Time:        2,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

// Hasher produces salted Argon2id digests.
type Hasher struct {
	params Params
	rand   io.Reader
}

// New returns a Hasher using p and crypto/rand as the salt source.
func New(p Params) *Hasher {
	return &Hasher{params: p, rand: rand.Reader}
}

// Default returns a Hasher with DefaultParams.
func Default() *Hasher {
	return New(DefaultParams)
}

// Hash derives a digest for plaintext with a fresh random salt, so two calls
// with the same plaintext never return the same string. The only failure is
// the entropy source, which callers must treat as fatal.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLen)

	// $argon2id$v=19$m=<M>,t=<T>,p=<P>$<b64(salt)>$<b64(key)>
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// an unparseable digest is an error wrapping ErrMalformedDigest.
func Verify(digest, plaintext string) (bool, error) {
	d, err := parse(digest)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(plaintext), d.salt, d.params.Time, d.params.Memory, d.params.Parallelism, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(key, d.key) == 1, nil
}

// IsDigest reports whether s is structurally a digest produced by Hash.
// It does not derive any key.
func IsDigest(s string) bool {
	_, err := parse(s)
	return err == nil
}

type decoded struct {
	params Params
	salt   []byte
	key    []byte
}

func parse(digest string) (*decoded, error) {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: unexpected layout", ErrMalformedDigest)
	}
	if parts[1] != algorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedDigest, parts[1])
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedDigest, parts[2])
	}

	p, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLen || len(salt) > maxSaltLen {
		return nil, fmt.Errorf("%w: bad salt", ErrMalformedDigest)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLen || len(key) > maxKeyLen {
		return nil, fmt.Errorf("%w: bad key", ErrMalformedDigest)
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))

	return &decoded{params: p, salt: salt, key: key}, nil
}

func parseParams(s string) (Params, error) {
	var p Params
	seen := map[string]bool{}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || seen[k] {
			return p, fmt.Errorf("%w: bad parameters %q", ErrMalformedDigest, s)
		}
		seen[k] = true
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, fmt.Errorf("%w: bad parameter %q", ErrMalformedDigest, kv)
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > maxParallelism {
				return p, fmt.Errorf("%w: bad parameter %q", ErrMalformedDigest, kv)
			}
			p.Parallelism = uint8(n)
		default:
			return p, fmt.Errorf("%w: unknown parameter %q", ErrMalformedDigest, k)
		}
	}
	if len(seen) != 3 {
		return p, fmt.Errorf("%w: missing parameters in %q", ErrMalformedDigest, s)
	}
	if p.Parallelism == 0 || p.Time == 0 || p.Time > maxTime ||
		p.Memory < 8*uint32(p.Parallelism) || p.Memory > maxMemory {
		return p, fmt.Errorf("%w: parameters out of range", ErrMalformedDigest)
	}
	return p, nil
}
