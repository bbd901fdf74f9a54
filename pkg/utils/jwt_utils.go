package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the access token lifetime when JWT_TTL_SECONDS is
// not set: one week, matching the long-lived sessions the floor staff
// tablets rely on.
const DefaultTokenTTL = 604800 * time.Second

var (
	jwtSecretKey = []byte(Getenv("JWT_SECRET", "resto-pos-dev-secret-change-me"))
	tokenTTL     = tokenTTLFromEnv()
)

func tokenTTLFromEnv() time.Duration {
	raw := Getenv("JWT_TTL_SECONDS", "")
	if raw == "" {
		return DefaultTokenTTL
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return DefaultTokenTTL
	}
	return time.Duration(seconds) * time.Second
}

// TokenTTL returns the configured access token lifetime.
func TokenTTL() time.Duration {
	return tokenTTL
}

// Claims is the JWT claims structure. Roles and permissions are not
// embedded: they are resolved per request so role changes take effect
// without a re-login.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed JWT for the given user.
func GenerateAccessToken(userID int64, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "resto-pos-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string. It returns the
// claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
