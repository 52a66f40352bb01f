package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/algestep/server/dao"
	"github.com/google/uuid"
)

func NewSolvesDBConn(file string) (*SolvesDB, error) {
	repo := &SolvesDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

// SolvesDB stores Solves in the solves table. The steps of a Solve are kept
// in a single column as base64-encoded REZI.
type SolvesDB struct {
	db *sql.DB
}

func (repo *SolvesDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS solves (
		id TEXT NOT NULL PRIMARY KEY,
		expression TEXT NOT NULL,
		include TEXT NOT NULL,
		exclude TEXT NOT NULL,
		steps TEXT NOT NULL,
		done INTEGER NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *SolvesDB) Create(ctx context.Context, s dao.Solve) (dao.Solve, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Solve{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO solves (id, expression, include, exclude, steps, done, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Solve{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		s.Expression,
		convertToDB_Names(s.Include),
		convertToDB_Names(s.Exclude),
		dao.EncodeSteps(s.Steps),
		convertToDB_Bool(s.Done),
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Solve{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *SolvesDB) GetAll(ctx context.Context) ([]dao.Solve, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, expression, include, exclude, steps, done, created, modified FROM solves ORDER BY created, id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Solve

	for rows.Next() {
		s, err := scanSolve(rows)
		if err != nil {
			return all, err
		}
		all = append(all, s)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *SolvesDB) Update(ctx context.Context, id uuid.UUID, s dao.Solve) (dao.Solve, error) {
	// deliberately not updating created
	res, err := repo.db.ExecContext(ctx, `UPDATE solves SET id=?, expression=?, include=?, exclude=?, steps=?, done=?, modified=? WHERE id=?;`,
		convertToDB_UUID(s.ID),
		s.Expression,
		convertToDB_Names(s.Include),
		convertToDB_Names(s.Exclude),
		dao.EncodeSteps(s.Steps),
		convertToDB_Bool(s.Done),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Solve{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Solve{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Solve{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, s.ID)
}

func (repo *SolvesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, expression, include, exclude, steps, done, created, modified FROM solves WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanSolve(row)
}

func (repo *SolvesDB) Delete(ctx context.Context, id uuid.UUID) (dao.Solve, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM solves WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *SolvesDB) Close() error {
	return repo.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSolve(row scanner) (dao.Solve, error) {
	var s dao.Solve
	var id string
	var include string
	var exclude string
	var steps string
	var done int
	var created int64
	var modified int64

	err := row.Scan(
		&id,
		&s.Expression,
		&include,
		&exclude,
		&steps,
		&done,
		&created,
		&modified,
	)
	if err != nil {
		return dao.Solve{}, wrapDBError(err)
	}

	err = convertFromDB_UUID(id, &s.ID)
	if err != nil {
		return s, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	err = convertFromDB_Names(include, &s.Include)
	if err != nil {
		return s, fmt.Errorf("stored include list %q is invalid: %w", include, err)
	}
	err = convertFromDB_Names(exclude, &s.Exclude)
	if err != nil {
		return s, fmt.Errorf("stored exclude list %q is invalid: %w", exclude, err)
	}
	s.Steps, err = dao.DecodeSteps(steps)
	if err != nil {
		return s, fmt.Errorf("stored steps for %s are invalid: %w", id, err)
	}
	err = convertFromDB_Bool(done, &s.Done)
	if err != nil {
		return s, fmt.Errorf("stored done flag is invalid: %w", err)
	}
	err = convertFromDB_Time(created, &s.Created)
	if err != nil {
		return s, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	err = convertFromDB_Time(modified, &s.Modified)
	if err != nil {
		return s, fmt.Errorf("stored modified time %d is invalid: %w", modified, err)
	}

	return s, nil
}
