package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what we extract from a verified identity-provider token.
// The subject is the provider's stable user id; email and name ride
// along so we can create the local user row on first sign-in.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// ValidateToken parses and validates a provider-issued JWT and returns
// its claims. The shared HS256 secret comes from configuration.
func ValidateToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but the HMAC family we
		// share with the identity provider.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("invalid subject claim")
	}

	claims := &Claims{Subject: sub}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	return claims, nil
}

// GenerateToken mints a token in the provider's format. Used by local
// development and the middleware tests; production tokens come from the
// identity provider itself.
func GenerateToken(subject, email, name string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(72 * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
