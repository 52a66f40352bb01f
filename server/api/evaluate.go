package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/algestep/server/result"
	"github.com/dekarrin/algestep/server/serr"
)

// HTTPEvaluate returns a HandlerFunc that computes the value of an expression
// directly, without a solve session.
func (api API) HTTPEvaluate() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epEvaluate)
}

func (api API) epEvaluate(req *http.Request) result.Result {
	var evalReq EvaluateRequest
	if err := parseJSON(req, "evaluate", &evalReq); err != nil {
		return result.BadRequest(userMessage(err), err.Error())
	}

	v, err := api.Backend.Evaluate(req.Context(), evalReq.Expression, evalReq.Bindings)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrBadArgument):
			return result.BadRequest(userMessage(err), "evaluate %q: %s", evalReq.Expression, err.Error())
		case errors.Is(err, serr.ErrMath):
			return result.Unprocessable(userMessage(err), "evaluate %q: %s", evalReq.Expression, err.Error())
		}
		return result.InternalServerError("evaluate %q: %s", evalReq.Expression, err.Error())
	}

	return result.OK(EvaluateResponse{Value: v.String()}, "evaluated %q", evalReq.Expression)
}
