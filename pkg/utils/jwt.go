package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	ClaimClinicianID = "clinician_id"
	ClaimSystemID    = "system_id"
	ClaimScope       = "scope"
)

type TokenClaims struct {
	ClinicianID string
	SystemID    string
	Scopes      []string
}

func CreateJWTToken(claims TokenClaims, jwtSecretKey string) (string, error) {
	mapClaims := jwt.MapClaims{}
	if claims.ClinicianID != "" {
		mapClaims[ClaimClinicianID] = claims.ClinicianID
	}
	if claims.SystemID != "" {
		mapClaims[ClaimSystemID] = claims.SystemID
	}
	mapClaims[ClaimScope] = strings.Join(claims.Scopes, " ")
	mapClaims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(jwtSecretKey))
}

// ParseJWTToken validates the HMAC signature unless skipValidation is set, in
// which case the claims are read as-is.
func ParseJWTToken(tokenString string, jwtSecretKey string, skipValidation bool) (TokenClaims, error) {
	mapClaims := jwt.MapClaims{}

	if skipValidation {
		if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, mapClaims); err != nil {
			return TokenClaims{}, err
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecretKey), nil
		})
		if err != nil {
			return TokenClaims{}, err
		}
		if !token.Valid {
			return TokenClaims{}, fmt.Errorf("invalid token")
		}
	}

	claims := TokenClaims{}
	claims.ClinicianID, _ = mapClaims[ClaimClinicianID].(string)
	claims.SystemID, _ = mapClaims[ClaimSystemID].(string)
	if scope, ok := mapClaims[ClaimScope].(string); ok {
		claims.Scopes = strings.Fields(scope)
	}

	return claims, nil
}
