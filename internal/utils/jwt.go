package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // sentinel errors for token parsing
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/rinatiamaev/salesFactoryNew/internal/model" // principal being encoded
)

// ErrInvalidToken is returned when an access token cannot be parsed, is
// signed with an unexpected algorithm, has expired or lacks a subject.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a principal.  The
// subject claim carries the username; role and table_number are copied for
// the frontend's convenience only.  Authorization never trusts them: the
// subject is resolved again on every request.
func NewAccessToken(secret string, p model.Principal, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  p.Username,
        "role": string(p.Role),
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    if p.TableNumber != nil {
        claims["table_number"] = *p.TableNumber
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw with secret and returns its subject.
func ParseAccessToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC-signed.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    sub, err := tok.Claims.GetSubject()
    if err != nil || sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}
