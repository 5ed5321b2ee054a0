package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	SaltLength   = 32
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	badgeIdentifierSpace = 1_000_000_000
)

func GenerateSalt() (string, error) {
	return randomString(SaltLength, saltAlphabet)
}

func DeriveHash(password, salt string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key), nil
}

func HashesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateBadgeIdentifier returns "@" followed by nine random digits.
func GenerateBadgeIdentifier() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(badgeIdentifierSpace))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("@%09d", n.Int64()), nil
}

func randomString(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}

	return string(out), nil
}
