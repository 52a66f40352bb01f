package api

import (
	"net/http"

	"github.com/dekarrin/algestep/server/result"
)

// HTTPGetRules returns a HandlerFunc that lists the rules a solve can use.
func (api API) HTTPGetRules() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetRules)
}

func (api API) epGetRules(req *http.Request) result.Result {
	descs := api.Backend.Rules()

	resp := make([]RuleModel, len(descs))
	for i, d := range descs {
		resp[i] = RuleModel{
			Name:     d.Name,
			Bucket:   d.Bucket.String(),
			Kinds:    d.Kinds,
			Fallback: d.Fallback,
		}
	}
	return result.OK(resp, "got %d rules", len(resp))
}
