package jwt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a credential is not a decodable JWT.
var ErrMalformedToken = errors.New("jwt: malformed token")

// Claims is the subset of the login claims the portal uses.
//
// UserID and Mail follow the backend's payload names.
type Claims struct {
	UserID  string `json:"id,omitempty"`
	Mail    string `json:"mail,omitempty"`
	OrigIAT int64  `json:"orig_iat,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the exp claim in epoch seconds, or 0 when absent.
func (c *Claims) Expiry() int64 {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// Username returns the id claim, falling back to sub.
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

var parser = jwt.NewParser()

// Decode parses token without verifying its signature or time claims.
// A leading "Bearer " prefix is tolerated.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// ExpiryOf returns the exp claim of token in epoch seconds (0 when absent).
func ExpiryOf(token string) (int64, error) {
	claims, err := Decode(token)
	if err != nil {
		return 0, err
	}
	return claims.Expiry(), nil
}
