package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/middle"
	"github.com/dekarrin/algestep/server/result"
	"github.com/dekarrin/algestep/server/serr"
	"github.com/dekarrin/algestep/server/token"
)

// HTTPCreateSolve returns a HandlerFunc that starts a new solve session and
// returns its ID along with the token needed to advance it.
func (api API) HTTPCreateSolve() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateSolve)
}

func (api API) epCreateSolve(req *http.Request) result.Result {
	var createReq CreateSolveRequest
	if err := parseJSON(req, "create_solve", &createReq); err != nil {
		return result.BadRequest(userMessage(err), err.Error())
	}

	s, err := api.Backend.CreateSolve(req.Context(), createReq.Expression, createReq.Include, createReq.Exclude)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(userMessage(err), "create solve of %q: %s", createReq.Expression, err.Error())
		}
		return result.InternalServerError("create solve: %s", err.Error())
	}

	tok, err := token.Generate(api.Secret, s, api.TokenTTL)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := CreateSolveResponse{
		ID:      s.ID.String(),
		Token:   tok,
		Display: s.Display(),
	}
	return result.Created(resp, "solve %s created for %q", s.ID, s.Expression)
}

// HTTPGetSolve returns a HandlerFunc that gets a solve session along with
// every step it has taken.
func (api API) HTTPGetSolve() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetSolve)
}

func (api API) epGetSolve(req *http.Request) result.Result {
	id := requireIDParam(req)

	s, err := api.Backend.GetSolve(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound("solve %s does not exist", id)
		}
		return result.InternalServerError("get solve %s: %s", id, err.Error())
	}

	return result.OK(solveModel(s), "got solve %s", id)
}

// HTTPCreateStep returns a HandlerFunc that advances a solve session by one
// step.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the solve the client's token was made for.
func (api API) HTTPCreateStep() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateStep)
}

func (api API) epCreateStep(req *http.Request) result.Result {
	id := requireIDParam(req)
	authed := req.Context().Value(middle.AuthSolve).(dao.Solve)

	if authed.ID != id {
		return result.Forbidden("token for solve %s used on solve %s", authed.ID, id)
	}

	s, changes, err := api.Backend.AdvanceSolve(req.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, serr.ErrNotFound):
			return result.NotFound("solve %s does not exist", id)
		case errors.Is(err, serr.ErrMath):
			return result.Unprocessable(userMessage(err), "step solve %s: %s", id, err.Error())
		case errors.Is(err, serr.ErrStepLimit):
			return result.Conflict("The solve has taken as many steps as it is allowed", "step solve %s: %s", id, err.Error())
		}
		return result.InternalServerError("step solve %s: %s", id, err.Error())
	}

	resp := StepResponse{
		Changes: changeModels(changes),
		Done:    s.Done,
	}
	if len(changes) > 0 {
		step := stepModel(s.Steps[len(s.Steps)-1])
		resp.Step = &step
	}

	return result.OK(resp, "solve %s advanced to step %d", id, len(s.Steps))
}

// HTTPDeleteSolve returns a HandlerFunc that deletes a solve session.
//
// The handler has requirements for the request context it receives, and if the
// requirements are not met it may return an HTTP-500. The context must contain
// the solve the client's token was made for.
func (api API) HTTPDeleteSolve() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteSolve)
}

func (api API) epDeleteSolve(req *http.Request) result.Result {
	id := requireIDParam(req)
	authed := req.Context().Value(middle.AuthSolve).(dao.Solve)

	if authed.ID != id {
		return result.Forbidden("token for solve %s used to delete solve %s", authed.ID, id)
	}

	_, err := api.Backend.DeleteSolve(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound("solve %s does not exist", id)
		}
		return result.InternalServerError("delete solve %s: %s", id, err.Error())
	}

	return result.NoContent("solve %s deleted", id)
}

func solveModel(s dao.Solve) SolveModel {
	m := SolveModel{
		ID:         s.ID.String(),
		Expression: s.Expression,
		Include:    s.Include,
		Exclude:    s.Exclude,
		Display:    s.Display(),
		Done:       s.Done,
		Steps:      []StepModel{},
		Created:    s.Created.Format(time.RFC3339),
		Modified:   s.Modified.Format(time.RFC3339),
	}
	for _, st := range s.Steps {
		m.Steps = append(m.Steps, stepModel(st))
	}
	return m
}

func stepModel(st dao.Step) StepModel {
	changes := st.Changes
	if changes == nil {
		changes = []string{}
	}
	return StepModel{
		Number:  st.Number,
		Display: st.Display,
		Changes: changes,
	}
}

func changeModels(changes []solve.Change) []ChangeModel {
	models := []ChangeModel{}
	for _, ch := range changes {
		m := ChangeModel{
			Rule:        ch.Rule,
			Description: ch.Description,
			Inputs:      ch.InputText,
			Result:      ch.ResultText,
		}
		if m.Inputs == nil {
			m.Inputs = []string{}
		}
		models = append(models, m)
	}
	return models
}

// userMessage gives the message of err that is safe to show the client.
func userMessage(err error) string {
	var se serr.Error
	if errors.As(err, &se) && se.Message() != "" {
		return se.Message()
	}
	return err.Error()
}
