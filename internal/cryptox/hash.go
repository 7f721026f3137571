// Package cryptox implements the cryptographic primitives of the admissions
// portal: memory-hard password hashing, password-based symmetric envelopes,
// and recipient-set asymmetric encryption for strings and files.
//
// All operations fail with typed errors from internal/common; none of them
// panic on malformed input.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/enrollhub/admitd/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashPassword hashes plaintext with argon2id under a fresh random salt.
// The salt and parameters are encoded into the returned string, so each
// stored hash is self-describing.
func HashPassword(plaintext string) string {
	salt := common.GenerateRandByteArray(saltLen)
	sum := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum))
}

// VerifyPassword recomputes the hash of plaintext using the salt and
// parameters stored in encoded and compares in constant time. A malformed
// encoded hash yields false, never an error or panic.
func VerifyPassword(plaintext, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// HashIdentifier produces a deterministic keyed hash of value, suitable for
// uniqueness checks and equality lookups of personal identifiers. Unlike
// HashPassword it carries no per-record salt, so equal inputs map to equal
// outputs; the pepper keeps the mapping non-public.
func HashIdentifier(value string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
