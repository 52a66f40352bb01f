// Package inmem is a dao.Store that keeps everything in memory. Nothing
// survives a restart.
package inmem

import (
	"github.com/dekarrin/algestep/server/dao"
)

type store struct {
	solves *InMemorySolvesRepository
}

func NewDatastore() dao.Store {
	return &store{
		solves: NewSolvesRepository(),
	}
}

func (s *store) Solves() dao.SolveRepository {
	return s.solves
}

func (s *store) Close() error {
	return s.solves.Close()
}
