package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
)

// DecodeCredential decodes a base64 "username:password" blob. Only the first
// colon separates the two parts.
func DecodeCredential(blob string) (username string, password string, err error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errs.ErrMalformedCredential, err)
	}

	if !utf8.Valid(decoded) {
		return "", "", fmt.Errorf("%w: credentials are not valid UTF-8", errs.ErrMalformedCredential)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", fmt.Errorf("%w: missing separator", errs.ErrMalformedCredential)
	}

	return username, password, nil
}

func EncodeCredential(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
