package api

import (
	"net/http"

	"github.com/dekarrin/algestep/internal/version"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/middle"
	"github.com/dekarrin/algestep/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// a value denoting whether the client making the request gave a solve token.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	hasToken := req.Context().Value(middle.AuthHasToken).(bool)

	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Algestep = version.Current
	resp.Version.Grammar = version.Grammar

	clientStr := "unauthed client"
	if hasToken {
		s := req.Context().Value(middle.AuthSolve).(dao.Solve)
		clientStr = "client of solve " + s.ID.String()
	}
	return result.OK(resp, "%s got API info", clientStr)
}
