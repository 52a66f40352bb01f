package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/algestep/internal/util"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/google/uuid"
)

func NewSolvesRepository() *InMemorySolvesRepository {
	return &InMemorySolvesRepository{
		solves: make(map[uuid.UUID]dao.Solve),
	}
}

// InMemorySolvesRepository is safe for concurrent use.
type InMemorySolvesRepository struct {
	mtx    sync.RWMutex
	solves map[uuid.UUID]dao.Solve
}

func (imsr *InMemorySolvesRepository) Close() error {
	return nil
}

func (imsr *InMemorySolvesRepository) Create(ctx context.Context, s dao.Solve) (dao.Solve, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Solve{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	s.ID = newUUID

	// make sure it's not already in the DB
	if _, ok := imsr.solves[s.ID]; ok {
		return dao.Solve{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	s.Created = now
	s.Modified = now

	imsr.solves[s.ID] = copySolve(s)
	return copySolve(s), nil
}

func (imsr *InMemorySolvesRepository) GetAll(ctx context.Context) ([]dao.Solve, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	all := make([]dao.Solve, 0, len(imsr.solves))
	for k := range imsr.solves {
		all = append(all, copySolve(imsr.solves[k]))
	}

	all = util.SortBy(all, func(l, r dao.Solve) bool {
		if !l.Created.Equal(r.Created) {
			return l.Created.Before(r.Created)
		}
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imsr *InMemorySolvesRepository) Update(ctx context.Context, id uuid.UUID, s dao.Solve) (dao.Solve, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	existing, ok := imsr.solves[id]
	if !ok {
		return dao.Solve{}, dao.ErrNotFound
	}

	if s.ID != id {
		if _, ok := imsr.solves[s.ID]; ok {
			return dao.Solve{}, dao.ErrConstraintViolation
		}
	}

	s.Created = existing.Created
	s.Modified = time.Now()

	imsr.solves[s.ID] = copySolve(s)
	if s.ID != id {
		delete(imsr.solves, id)
	}

	return copySolve(s), nil
}

func (imsr *InMemorySolvesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	imsr.mtx.RLock()
	defer imsr.mtx.RUnlock()

	s, ok := imsr.solves[id]
	if !ok {
		return dao.Solve{}, dao.ErrNotFound
	}

	return copySolve(s), nil
}

func (imsr *InMemorySolvesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	imsr.mtx.Lock()
	defer imsr.mtx.Unlock()

	s, ok := imsr.solves[id]
	if !ok {
		return dao.Solve{}, dao.ErrNotFound
	}

	delete(imsr.solves, id)

	return s, nil
}

// copySolve copies the slices of s so that callers never share them with the
// stored value.
func copySolve(s dao.Solve) dao.Solve {
	if s.Include != nil {
		s.Include = append([]string(nil), s.Include...)
	}
	if s.Exclude != nil {
		s.Exclude = append([]string(nil), s.Exclude...)
	}
	if s.Steps != nil {
		steps := make(dao.Steps, len(s.Steps))
		for i, st := range s.Steps {
			st.Changes = append([]string(nil), st.Changes...)
			steps[i] = st
		}
		s.Steps = steps
	}
	return s
}
