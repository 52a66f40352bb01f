// Package solving has services for running solve sessions on the algestep
// server backend, decoupled from the API that accesses it.
package solving

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dekarrin/algestep/algebra"
	"github.com/dekarrin/algestep/algebra/solve"
	"github.com/dekarrin/algestep/algebra/syntax"
	"github.com/dekarrin/algestep/algebra/value"
	"github.com/dekarrin/algestep/internal/ebnf"
	"github.com/dekarrin/algestep/internal/msgerr"
	"github.com/dekarrin/algestep/internal/util"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/serr"
	"github.com/google/uuid"
)

// Service is a service for running solve sessions. It performs the actions
// requested and makes calls to server persistence to preserve every session.
// The engine solving a session is never kept between calls; each step
// rebuilds it from the stored expression.
//
// Create one with New.
type Service struct {
	db       dao.Store
	fe       *ebnf.Frontend
	reg      *solve.Registry
	maxSteps int

	// held while a session is advanced so two steps on one session cannot
	// both record themselves as the same step.
	stepMtx sync.Mutex
}

// New creates a Service that persists to db and parses with fe, which must
// have been built by syntax.NewFrontend. If reg is nil, solve.DefaultRegistry
// is used. maxSteps limits how many steps one session may take.
func New(db dao.Store, fe *ebnf.Frontend, reg *solve.Registry, maxSteps int) *Service {
	if reg == nil {
		reg = solve.DefaultRegistry()
	}
	return &Service{
		db:       db,
		fe:       fe,
		reg:      reg,
		maxSteps: maxSteps,
	}
}

// Rules returns a description of every rule a session can use.
func (svc *Service) Rules() []solve.Descriptor {
	rules := svc.reg.Rules()
	descs := make([]solve.Descriptor, len(rules))
	for i := range rules {
		descs[i] = solve.Describe(rules[i])
	}
	return descs
}

// CreateSolve starts a new solve session of the given expression, using only
// the rules that include and exclude select.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the expression cannot be
// parsed or a rule name is unknown, it will match serr.ErrBadArgument. If the
// error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc *Service) CreateSolve(ctx context.Context, expr string, include, exclude []string) (dao.Solve, error) {
	eng, err := svc.engine(expr, include, exclude)
	if err != nil {
		return dao.Solve{}, err
	}

	s, err := svc.db.Solves().Create(ctx, dao.Solve{
		Expression: eng.Source(),
		Include:    include,
		Exclude:    exclude,
	})
	if err != nil {
		return dao.Solve{}, serr.WrapDB("could not create solve", err)
	}

	return s, nil
}

// GetSolve returns the solve session with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) GetSolve(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	s, err := svc.db.Solves().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Solve{}, serr.ErrNotFound
		}
		return dao.Solve{}, serr.WrapDB("could not get solve", err)
	}
	return s, nil
}

// GetAllSolves returns every solve session, oldest first.
func (svc *Service) GetAllSolves(ctx context.Context) ([]dao.Solve, error) {
	all, err := svc.db.Solves().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not get solves", err)
	}
	return all, nil
}

// AdvanceSolve makes one step of progress on the solve session with the given
// ID and returns the session as it is after the step along with the changes
// made. An empty change list means the session is done; the session is marked
// as such and further calls keep returning no changes.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the next step is math that cannot
// be done, it will match serr.ErrMath and the session is left as it was. If
// the session has already taken the most steps allowed, it will match
// serr.ErrStepLimit. If the error occured due to an unexpected problem with the
// DB, it will match serr.ErrDB.
func (svc *Service) AdvanceSolve(ctx context.Context, id uuid.UUID) (dao.Solve, []solve.Change, error) {
	svc.stepMtx.Lock()
	defer svc.stepMtx.Unlock()

	s, err := svc.GetSolve(ctx, id)
	if err != nil {
		return dao.Solve{}, nil, err
	}
	if s.Done {
		return s, nil, nil
	}
	if svc.maxSteps > 0 && len(s.Steps) >= svc.maxSteps {
		return s, nil, serr.New(fmt.Sprintf("solve has already taken %d steps", len(s.Steps)), serr.ErrStepLimit)
	}

	eng, err := svc.replay(s)
	if err != nil {
		return dao.Solve{}, nil, err
	}

	changes, err := eng.SolveNextStep()
	if err != nil {
		return s, nil, serr.New(msgerr.Message(err), err, serr.ErrMath)
	}

	if len(changes) == 0 {
		s.Done = true
	} else {
		rec := dao.Step{
			Number:  len(s.Steps) + 1,
			Display: eng.String(),
		}
		for _, ch := range changes {
			rec.Changes = append(rec.Changes, ch.String())
		}
		s.Steps = append(s.Steps, rec)
	}

	updated, err := svc.db.Solves().Update(ctx, s.ID, s)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Solve{}, nil, serr.ErrNotFound
		}
		return dao.Solve{}, nil, serr.WrapDB("could not update solve", err)
	}

	return updated, changes, nil
}

// DeleteSolve deletes the solve session with the given ID and returns it as it
// was just before it was deleted.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no session with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) DeleteSolve(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	s, err := svc.db.Solves().Delete(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Solve{}, serr.ErrNotFound
		}
		return dao.Solve{}, serr.WrapDB("could not delete solve", err)
	}
	return s, nil
}

// Evaluate computes the value of expr with the given variable bindings. Each
// binding is the text of a number, such as "2" or "frac{1/2}".
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the expression cannot be
// parsed or a binding is not a number, it will match serr.ErrBadArgument. If
// the math cannot be done, it will match serr.ErrMath.
func (svc *Service) Evaluate(ctx context.Context, expr string, bindings map[string]string) (value.Value, error) {
	bound := syntax.Bindings{}
	for _, name := range util.OrderedKeys(bindings) {
		text := bindings[name]
		if len(name) != 1 {
			return nil, serr.New(fmt.Sprintf("%q is not a variable name", name), serr.ErrBadArgument)
		}
		v, err := value.Parse(text)
		if err != nil {
			return nil, serr.New(fmt.Sprintf("%s: %s", name, err.Error()), err, serr.ErrBadArgument)
		}
		if !value.Numeric(v) {
			return nil, serr.New(fmt.Sprintf("%s: can only be given a number, not %s", name, text), serr.ErrBadArgument)
		}
		bound[name] = v
	}

	eng, err := svc.engine(expr, nil, nil)
	if err != nil {
		return nil, err
	}

	v, err := eng.Evaluate(bound)
	if err != nil {
		if errors.Is(err, algebra.ErrInvalidStep) {
			return nil, serr.New(msgerr.Message(err), err, serr.ErrMath)
		}
		return nil, err
	}
	return v, nil
}

func (svc *Service) engine(expr string, include, exclude []string) (*algebra.Engine, error) {
	eng, err := algebra.New(expr,
		algebra.WithRegistry(svc.reg),
		algebra.WithFrontend(svc.fe),
		algebra.IncludeRules(include...),
		algebra.ExcludeRules(exclude...),
	)
	if err != nil {
		return nil, serr.New(msgerr.Message(err), err, serr.ErrBadArgument)
	}
	return eng, nil
}

// replay rebuilds the engine of s and runs it through the steps already
// recorded for it.
func (svc *Service) replay(s dao.Solve) (*algebra.Engine, error) {
	eng, err := svc.engine(s.Expression, s.Include, s.Exclude)
	if err != nil {
		return nil, fmt.Errorf("stored solve %s no longer parses: %w", s.ID, err)
	}
	if len(s.Steps) == 0 {
		return eng, nil
	}
	steps, err := eng.Solve(len(s.Steps))
	if err != nil {
		return nil, fmt.Errorf("replay solve %s: %w", s.ID, err)
	}
	if len(steps) != len(s.Steps) {
		return nil, fmt.Errorf("replay solve %s: made %d step(s) but %d are recorded", s.ID, len(steps), len(s.Steps))
	}
	return eng, nil
}
