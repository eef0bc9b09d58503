// Package auth issues and verifies the signed access credentials exchanged
// with clients. Tokens carry the subject, its role labels, and an absolute
// expiry, and are signed with a process-wide HMAC secret.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/photobridge/authserver/internal/common"
)

// Claims is the access-token payload: registered claims plus the account's
// role labels.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// signingMethods lists the HMAC methods the server accepts. The configured
// algorithm must be one of these; anything else is rejected at startup.
var signingMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// ResolveMethod validates the configured signing-algorithm name.
func ResolveMethod(name string) (jwt.SigningMethod, error) {
	m, ok := signingMethods[name]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", name)
	}
	return m, nil
}

// GenerateToken mints a signed access token for subject with the given roles.
// Expiry is now + validityDuration.
func GenerateToken(subject string, roles []string, secretKey []byte, method jwt.SigningMethod, now time.Time, validityDuration time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(validityDuration)
	token := jwt.NewWithClaims(method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles: roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken verifies signature and expiry and returns the claims. Every
// failure mode (bad signature, malformed payload, expired) collapses to
// common.ErrorUnauthenticated so callers cannot learn which check failed.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, common.ErrorUnauthenticated
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrorUnauthenticated
	}

	return claims, nil
}
