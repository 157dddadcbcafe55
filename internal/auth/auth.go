// Package auth checks the bearer tokens that unlock write-only gauge
// commands (seal, reset, unseal keys, PF clear) on the network front ends.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeControl grants write-only commands.
const ScopeControl = "control"

var (
	ErrNoToken   = errors.New("auth: no bearer token")
	ErrForbidden = errors.New("auth: missing control scope")
)

type Claims struct {
	Subject string
	Scopes  []string
}

// Verifier validates HS256 tokens against a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth: HS256 requires a secret")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, _ := claims.GetSubject()
	scopes, err := stringSlice(*claims, "scopes")
	if err != nil {
		return nil, err
	}
	return &Claims{Subject: sub, Scopes: scopes}, nil
}

// Authorize requires a valid token carrying ScopeControl.
func (v *Verifier) Authorize(r *http.Request) (*Claims, error) {
	tok := TokenFromRequest(r)
	if tok == "" {
		return nil, ErrNoToken
	}
	claims, err := v.Verify(tok)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(claims.Scopes, ScopeControl) {
		return claims, ErrForbidden
	}
	return claims, nil
}

// Sign issues a control token. Used by the CLI to mint operator tokens.
func (v *Verifier) Sign(subject string, scopes ...string) (string, error) {
	claims := jwt.MapClaims{"sub": subject, "scopes": scopes}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// TokenFromRequest reads the Authorization bearer token, falling back to the
// token query parameter for websocket clients that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func stringSlice(claims jwt.MapClaims, key string) ([]string, error) {
	value, ok := claims[key]
	if !ok {
		return nil, nil
	}
	switch val := value.(type) {
	case []string:
		return val, nil
	case []interface{}:
		out := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid %s claim: not a string", key)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid %s claim: not a string array", key)
}
