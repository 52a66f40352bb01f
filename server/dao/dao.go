// Package dao provides data access objects for recording solves, both for the
// algestep server and for the history kept by the console.
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Solves() SolveRepository
	Close() error
}

// SolveRepository persists Solves.
type SolveRepository interface {

	// Create creates a new Solve. All attributes except for auto-generated
	// fields are taken from the provided Solve.
	Create(ctx context.Context, s Solve) (Solve, error)
	GetByID(ctx context.Context, id uuid.UUID) (Solve, error)

	// GetAll returns every Solve, oldest first.
	GetAll(ctx context.Context) ([]Solve, error)
	Update(ctx context.Context, id uuid.UUID, s Solve) (Solve, error)
	Delete(ctx context.Context, id uuid.UUID) (Solve, error)
	Close() error
}

// Solve is an expression along with the steps that have been taken to solve
// it. The state of the engine solving it is never stored; it is rebuilt by
// replaying the expression for as many steps as were recorded.
type Solve struct {
	ID         uuid.UUID
	Expression string
	Include    []string
	Exclude    []string
	Steps      Steps

	// Done is whether the engine found nothing more to do after the last
	// step.
	Done bool

	Created  time.Time
	Modified time.Time
}

// Display returns what the expression reads as after the last recorded step.
func (s Solve) Display() string {
	if len(s.Steps) == 0 {
		return s.Expression
	}
	return s.Steps[len(s.Steps)-1].Display
}

// Step is a recorded step of a Solve.
type Step struct {
	Number  int
	Display string

	// Changes has one entry per change made in the step, each written the way
	// solve.Change.String gives it.
	Changes []string
}
