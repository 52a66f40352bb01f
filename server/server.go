// Package server is an HTTP REST server that runs solve sessions over the
// algebra engine and keeps them in a persistence layer.
//
// Routes, all under /api/v1:
//
//	POST   /solves             - start a solve session; returns its ID and token
//	GET    /solves/{id}        - get a session and every step it has taken
//	POST   /solves/{id}/steps  - advance a session one step (token required)
//	DELETE /solves/{id}        - delete a session (token required)
//	POST   /evaluate           - compute the value of an expression
//	GET    /rules              - list the rules a session can use
//	GET    /info               - get version info on the server and engine
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/server/api"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/solving"
	"github.com/go-chi/chi/v5"
)

// AlgestepServer is an HTTP REST server that provides solve sessions. The
// zero-value of an AlgestepServer should not be used directly; call New() to
// get one ready for use.
type AlgestepServer struct {
	router chi.Router
	db     dao.Store
	fe     *ebnf.Frontend
	api    api.API
}

// New creates a new AlgestepServer from cfg. Unset values in cfg are given
// their defaults before it is validated.
func New(cfg Config) (*AlgestepServer, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.Store.Open()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fe, err := syntax.NewFrontend(cfg.ParseBudget)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build math parser: %w", err)
	}

	svc := solving.New(db, fe, nil, cfg.MaxSteps)

	srv := &AlgestepServer{
		db: db,
		fe: fe,
		api: api.API{
			Backend:     svc,
			UnauthDelay: cfg.pause(),
			Secret:      cfg.Secret,
			TokenTTL:    cfg.TokenTTL,
		},
	}
	srv.router = newRouter(srv.api, db)

	return srv, nil
}

// Handler returns the handler that serves every route of the server.
func (srv *AlgestepServer) Handler() http.Handler {
	return srv.router
}

// ServeForever begins listening on the given address for HTTP REST client
// requests. If address is "", it will default to "localhost:8080". It only
// returns if the server stops.
func (srv *AlgestepServer) ServeForever(address string) error {
	if address == "" {
		address = "localhost:8080"
	}

	log.Printf("INFO  Listening on %s", address)
	return http.ListenAndServe(address, srv.router)
}

// Close releases the persistence layer and every pooled parser.
func (srv *AlgestepServer) Close() error {
	srv.fe.Close()
	return srv.db.Close()
}
