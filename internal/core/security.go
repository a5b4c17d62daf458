// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// PasswordHasher wraps bcrypt with a fixed work factor. Constructed once
// from config and passed down; nothing reads the cost globally.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash produces a salted bcrypt hash. Hashing an already-hashed value is
// a caller bug that would silently destroy the credential, so it is
// rejected outright.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("hash password: empty password")
	}

	if IsBcryptHash(password) {
		return "", fmt.Errorf("hash password: input is already a bcrypt hash")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Any mismatch
// or malformed hash yields false, never an error to the caller.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	return err == nil
}

// VerifyTimingSafe behaves like Verify but burns a comparable amount of
// CPU when no hash exists, so lookups for unknown identifiers are not
// distinguishable by response time.
func (h *PasswordHasher) VerifyTimingSafe(
	password string,
	encodedHash *string,
) bool {
	if encodedHash == nil || *encodedHash == "" {
		_ = bcrypt.CompareHashAndPassword(
			[]byte(dummyHash),
			[]byte(password),
		) //nolint:errcheck // result discarded on purpose
		return false
	}

	return h.Verify(password, *encodedHash)
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

func IsBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

var dummyHash string

func init() {
	hash, err := bcrypt.GenerateFromPassword(
		[]byte("dummy_password_for_timing_equalization"),
		DefaultBcryptCost,
	)
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = string(hash)
}

func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func CompareTokenHash(token, hash string) bool {
	tokenHash := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(tokenHash), []byte(hash)) == 1
}
