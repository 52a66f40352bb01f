// Package token creates and checks the JWTs that let a client advance or
// delete a solve session.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/algestep/server/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "algestep"

// Validate parses tok and checks that it is a current token for an existing
// solve, which is returned.
func Validate(ctx context.Context, tok string, secret []byte, db dao.SolveRepository) (dao.Solve, error) {
	var s dao.Solve

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		// which solve is it for? we need it for the signing key
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		s, err = db.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return nil, fmt.Errorf("subject does not exist")
			} else {
				return nil, fmt.Errorf("subject could not be validated")
			}
		}

		return signingKey(secret, s), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.Solve{}, err
	}

	return s, nil
}

// Get gets the bearer token from the Authorization header of req.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// Generate creates a token for s that expires after ttl.
func Generate(secret []byte, s dao.Solve, ttl time.Duration) (string, error) {
	claims := &jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(ttl).Unix(),
		"sub": s.ID.String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, s))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// signingKey mixes the creation time of the solve into the secret so a token
// cannot outlive the solve it was made for, even if the ID is reused.
func signingKey(secret []byte, s dao.Solve) []byte {
	var signKey []byte
	signKey = append(signKey, secret...)
	signKey = append(signKey, []byte(fmt.Sprintf("%d", s.Created.UnixNano()))...)
	return signKey
}
