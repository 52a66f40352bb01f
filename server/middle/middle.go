// Package middle contains middleware for use with the algestep server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/result"
	"github.com/dekarrin/algestep/server/token"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthHasToken AuthKey = iota
	AuthSolve
)

// AuthHandler is middleware that will accept a request, extract the token used
// for authentication, and look up the solve session that the token was made
// for.
//
// Keys are added to the request context before the request is passed to the
// next step in the chain. AuthSolve will contain the solve the token is for,
// and AuthHasToken will return whether a valid token was given (only applies
// for optional tokens; for non-optional, not having one will result in an
// HTTP error being returned before the request is passed to the next handler).
type AuthHandler struct {
	db            dao.SolveRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var hasToken bool
	var solve dao.Solve

	tok, err := token.Get(req)
	if err != nil {
		// deliberately leaving as embedded if instead of &&
		if ah.required {
			// error here means token isn't present (or at least isn't in the
			// expected format, which for all intents and purposes is non-existent).
			// This is not okay if a token is required.

			result := result.Unauthorized("", err.Error())
			time.Sleep(ah.unauthedDelay)
			result.WriteResponse(w, req)
			return
		}
	} else {
		// validate the token
		lookupSolve, err := token.Validate(req.Context(), tok, ah.secret, ah.db)
		if err != nil {
			// deliberately leaving as embedded if instead of &&
			if ah.required {
				result := result.Unauthorized("", err.Error())
				time.Sleep(ah.unauthedDelay)
				result.WriteResponse(w, req)
				return
			}
		} else {
			solve = lookupSolve
			hasToken = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthHasToken, hasToken)
	ctx = context.WithValue(ctx, AuthSolve, solve)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireToken gives Middleware that rejects any request without a valid
// solve token with an HTTP-401.
func RequireToken(db dao.SolveRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalToken gives Middleware that records whether the request has a valid
// solve token but lets it through either way.
func OptionalToken(db dao.SolveRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      false,
			next:          next,
		}
	}
}
