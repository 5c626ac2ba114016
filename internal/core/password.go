// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// argonParams is the tunable part of a PHC-encoded argon2id hash.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

var b64 = base64.RawStdEncoding

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

type decodedHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (*decodedHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return nil, errors.New("malformed password hash")
	}
	if fields[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported hash algorithm %q", fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("hash version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var d decodedHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&d.params.memory, &d.params.time, &d.params.threads); err != nil {
		return nil, fmt.Errorf("hash params: %w", err)
	}

	var err error
	if d.salt, err = b64.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("hash salt: %w", err)
	}
	if d.key, err = b64.DecodeString(fields[5]); err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}
	d.params.keyLen = uint32(len(d.key)) //nolint:gosec // argon2 keys are tiny

	return &d, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentArgon.encode(salt, currentArgon.derive(password, salt)), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	d, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := d.params.derive(password, d.salt)
	return subtle.ConstantTimeCompare(d.key, candidate) == 1, nil
}

// VerifyPasswordWithRehash also returns a fresh hash when the stored one
// was produced with different parameters. A failed rehash is not an error.
func VerifyPasswordWithRehash(password, encoded string) (bool, string, error) {
	ok, err := VerifyPassword(password, encoded)
	if err != nil || !ok {
		return false, "", err
	}

	if d, _ := parseHash(encoded); d != nil && d.params == currentArgon {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		return true, "", nil //nolint:nilerr // verified; upgrade is optional
	}
	return true, upgraded, nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("core: dummy password hash: %v", err))
	}
	return h
})

// VerifyPasswordTimingSafe spends the same argon2 work when encoded is
// nil or empty and then reports a mismatch.
func VerifyPasswordTimingSafe(password string, encoded *string) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _, _ = VerifyPasswordWithRehash(password, dummyHash())
		return false, "", nil
	}
	return VerifyPasswordWithRehash(password, *encoded)
}
