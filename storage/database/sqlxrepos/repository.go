// Package sqlxrepos implements the domain repositories on top of sqlx, for both postgres & sqlite3.
// Queries use `?` placeholders, rebound to the driver's bindvar.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/storage/database"
)

type repository struct {
	db core.DBExecutor
}

func (repo repository) getExec(exec []core.DBExecutor) core.DBExecutor {
	return core.GetExec(repo.db, exec)
}

func (repo repository) get(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return exec.GetContext(ctx, dest, exec.Rebind(query), args...)
}

func (repo repository) selekt(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return exec.SelectContext(ctx, dest, exec.Rebind(query), args...)
}

func (repo repository) exec(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (int64, error) {
	res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// trapNoRowsErr maps the "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps unique constraint violations to conflict
func trapUniqueErr(err error, conflict error, msg string) error {
	if database.IsUniqueViolation(err) {
		return conflict
	}
	return errors.Wrap(err, msg)
}
