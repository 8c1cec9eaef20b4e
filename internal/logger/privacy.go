package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	minHashSaltLength = 32
	hashLength        = 8
)

var hashSalt string

// InitHashSalt loads the salt for privacy hashes from LOG_HASH_SALT.
func InitHashSalt() error {
	salt := os.Getenv("LOG_HASH_SALT")
	if salt == "" {
		return fmt.Errorf("LOG_HASH_SALT must be set")
	}
	if len(salt) < minHashSaltLength {
		return fmt.Errorf("LOG_HASH_SALT must be at least %d characters", minHashSaltLength)
	}
	hashSalt = salt
	return nil
}

// InitHashSaltForTesting sets a fixed salt.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashUserID lets logs correlate one user's actions without exposing the ID.
func HashUserID(userID int64) string {
	return shortHash(strconv.FormatInt(userID, 10))
}

// HashUsername is HashUserID for failed logins, where no user ID exists.
// Usernames are folded to lower case first.
func HashUsername(username string) string {
	return shortHash("u:" + strings.ToLower(username))
}

func shortHash(value string) string {
	sum := sha256.Sum256([]byte(value + ":" + hashSalt))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// SanitizeText reduces free text such as expense titles to a length and a
// short prefix.
func SanitizeText(text string) string {
	switch {
	case text == "":
		return "<empty>"
	case len(text) <= 10:
		return fmt.Sprintf("<%d chars>", len(text))
	default:
		return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
	}
}
