// Package sqlite is a dao.Store backed by SQLite database files in a data
// directory.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dekarrin/algestep/server/dao"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string

	db *sql.DB

	solves *SolvesDB
}

func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "data.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.solves = &SolvesDB{db: st.db}
	if err := st.solves.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("%s: %w", st.dbFilename, err)
	}

	return st, nil
}

func (s *store) Solves() dao.SolveRepository {
	return s.solves
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", dao.ErrDecodingFailure, err)
	}
	*target = u
	return nil
}

func convertToDB_Time(t time.Time) int64 {
	return t.UnixNano()
}

func convertFromDB_Time(n int64, target *time.Time) error {
	*target = time.Unix(0, n)
	return nil
}

// rule names never contain commas, so a list of them is stored joined by
// commas.
func convertToDB_Names(names []string) string {
	return strings.Join(names, ",")
}

func convertFromDB_Names(s string, target *[]string) error {
	if s == "" {
		*target = nil
		return nil
	}
	*target = strings.Split(s, ",")
	return nil
}

func convertToDB_Bool(b bool) int {
	if b {
		return 1
	}
	return 0
}

func convertFromDB_Bool(n int, target *bool) error {
	switch n {
	case 0:
		*target = false
	case 1:
		*target = true
	default:
		return fmt.Errorf("%w: %d is not a stored bool", dao.ErrDecodingFailure, n)
	}
	return nil
}
