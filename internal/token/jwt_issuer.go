// Package token signs the access tokens embedded in checkout links.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/parkspot/service-booking/internal/domain/booking"
)

// Claims is the JWT body of a checkout token.
type Claims struct {
	booking.AccessClaims
	jwt.RegisteredClaims
}

// JWTIssuer signs checkout tokens with HS256.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates an issuer. A zero ttl produces tokens without expiry.
func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs claims.
func (i *JWTIssuer) Issue(claims booking.AccessClaims) (string, error) {
	now := i.now().UTC()
	registered := jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(uint64(claims.BookingID), 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if i.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccessClaims: claims, RegisteredClaims: registered})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign checkout token: %w", err)
	}
	return signed, nil
}
