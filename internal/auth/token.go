package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = time.Hour

// Issuer signs session tokens. Verification is the consumer's
// responsibility; this system only issues.
//
// Token format, for interoperability: HS256-signed JWT with claims
// {userId: number, iat: unix seconds, exp: unix seconds}, exp one hour
// after issuance.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Issuer{secret: []byte(secret), ttl: TokenTTL}, nil
}

// Issue produces a signed token for the given user id.
func (i *Issuer) Issue(userID int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
