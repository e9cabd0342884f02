// Package auth issues and verifies the bearer credentials that carry a
// user identifier between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer wraps a user identifier into a signed, time-limited credential.
type TokenIssuer interface {
	Sign(userID string) (string, error)
}

// TokenVerifier recovers the user identifier from a credential.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTIssuer implements both sides with HS256 tokens: sub = user id,
// iss = aud = issuer, iat = now, exp = now + validity.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

func NewJWTIssuer(secretKey, issuer string, validity time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secretKey), issuer: issuer, validity: validity, now: time.Now}
}

func (j *JWTIssuer) Sign(userID string) (string, error) {
	if userID == "" {
		return "", common.ErrInvalidToken
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.validity)),
	})

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
