package dao_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/dao/inmem"
	"github.com/dekarrin/algestep/server/dao/sqlite"
)

func stores(t *testing.T) map[string]dao.Store {
	sq, err := sqlite.NewDatastore(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}

	all := map[string]dao.Store{
		"inmem":  inmem.NewDatastore(),
		"sqlite": sq,
	}
	t.Cleanup(func() {
		for _, st := range all {
			st.Close()
		}
	})
	return all
}

func Test_SolveRepository(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			repo := st.Solves()

			created, err := repo.Create(ctx, dao.Solve{
				Expression: "2 + 3 * 4",
				Exclude:    []string{"PowValues", "Roots"},
			})
			if !assert.NoError(err) {
				return
			}
			assert.NotEqual(uuid.Nil, created.ID)
			assert.Equal("2 + 3 * 4", created.Expression)
			assert.Equal([]string{"PowValues", "Roots"}, created.Exclude)
			assert.Nil(created.Include)
			assert.Nil(created.Steps)
			assert.False(created.Done)
			assert.Equal("2 + 3 * 4", created.Display())

			created.Steps = dao.Steps{
				{Number: 1, Display: "2 + 12", Changes: []string{"multiply integers: 3, 4 => 12"}},
				{Number: 2, Display: "14", Changes: []string{"add integers: 2, 12 => 14"}},
			}
			created.Done = true
			updated, err := repo.Update(ctx, created.ID, created)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(created.Steps, updated.Steps)
			assert.True(updated.Done)
			assert.Equal("14", updated.Display())

			got, err := repo.GetByID(ctx, created.ID)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(updated.Steps, got.Steps)
			assert.Equal(updated.Exclude, got.Exclude)

			second, err := repo.Create(ctx, dao.Solve{Expression: "1"})
			if !assert.NoError(err) {
				return
			}
			all, err := repo.GetAll(ctx)
			assert.NoError(err)
			if assert.Len(all, 2) {
				assert.Equal(created.ID, all[0].ID)
				assert.Equal(second.ID, all[1].ID)
			}

			deleted, err := repo.Delete(ctx, created.ID)
			assert.NoError(err)
			assert.Equal(created.ID, deleted.ID)

			_, err = repo.GetByID(ctx, created.ID)
			assert.True(errors.Is(err, dao.ErrNotFound), "expected ErrNotFound, got %v", err)
			_, err = repo.Delete(ctx, created.ID)
			assert.True(errors.Is(err, dao.ErrNotFound), "expected ErrNotFound, got %v", err)
			_, err = repo.Update(ctx, created.ID, created)
			assert.True(errors.Is(err, dao.ErrNotFound), "expected ErrNotFound, got %v", err)
		})
	}
}

func Test_InMemory_returnsCopies(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	repo := inmem.NewSolvesRepository()

	s, err := repo.Create(ctx, dao.Solve{
		Expression: "1 + 1",
		Steps:      dao.Steps{{Number: 1, Display: "2", Changes: []string{"add integers: 1, 1 => 2"}}},
	})
	if !assert.NoError(err) {
		return
	}
	s.Steps[0].Changes[0] = "changed"

	got, err := repo.GetByID(ctx, s.ID)
	assert.NoError(err)
	assert.Equal("add integers: 1, 1 => 2", got.Steps[0].Changes[0])
}

func Test_DecodeSteps(t *testing.T) {
	testCases := []struct {
		name  string
		steps dao.Steps
	}{
		{name: "none", steps: nil},
		{name: "removed term", steps: dao.Steps{{Number: 1, Display: "", Changes: []string{"subtract like terms: 2a, 2a => (removed)"}}}},
		{name: "several changes", steps: dao.Steps{
			{Number: 1, Display: "(3)(12)", Changes: []string{"add integers: 1, 2 => 3", "multiply integers: 3, 4 => 12"}},
			{Number: 2, Display: "36", Changes: []string{"multiply integers: 3, 12 => 36"}},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := dao.DecodeSteps(dao.EncodeSteps(tc.steps))
			assert.NoError(err)
			assert.Equal(tc.steps, actual)
		})
	}
}

func Test_DecodeSteps_garbage(t *testing.T) {
	_, err := dao.DecodeSteps("not base64!")
	assert.ErrorIs(t, err, dao.ErrDecodingFailure)
}
