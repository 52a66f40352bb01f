package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/algestep/server/api"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/middle"
	"github.com/dekarrin/algestep/server/result"
	"github.com/go-chi/chi/v5"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API, db dao.Store) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a, db))

	return r
}

func newAPIRouter(a api.API, db dao.Store) chi.Router {
	r := chi.NewRouter()

	r.Mount("/solves", newSolvesRouter(a, db))
	r.Mount("/evaluate", newEvaluateRouter(a))
	r.Mount("/rules", newRulesRouter(a))
	r.Mount("/info", newInfoRouter(a, db))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)
	r.HandleFunc("/rules/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		result.NotFound().WriteResponse(w, req)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(a.UnauthDelay)
		result.MethodNotAllowed(req).WriteResponse(w, req)
	})

	return r
}

func newSolvesRouter(a api.API, db dao.Store) chi.Router {
	reqToken := middle.RequireToken(db.Solves(), a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.Post("/", a.HTTPCreateSolve())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetSolve())
		r.With(reqToken).Delete("/", a.HTTPDeleteSolve())
		r.With(reqToken).Post("/steps", a.HTTPCreateStep())
	})
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newEvaluateRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPEvaluate())

	return r
}

func newRulesRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetRules())

	return r
}

func newInfoRouter(a api.API, db dao.Store) chi.Router {
	optToken := middle.OptionalToken(db.Solves(), a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.With(optToken).Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	result.Redirection(redirPath).WriteResponse(w, req)
}
