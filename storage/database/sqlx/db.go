package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

// postgres error codes
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// constraintFields maps unique constraints to the input field they guard.
var constraintFields = map[string]string{
	"siswa_nisn_key":        "nisn",
	"guru_nip_key":          "nip",
	"guru_email_key":        "email",
	"pengguna_username_key": "username",
	"pengguna_email_key":    "email",
	"pengguna_id_guru_key":  "id_guru",
	"pengguna_id_siswa_key": "id_siswa",
	"nilai_siswa_mapel_key": "id_mapel",
}

type transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) core.Transactor {
	return &transactor{db: db}
}

func (t *transactor) InTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func getExec(db *sqlx.DB, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return db
}

// mapError translates driver errors into core errors; notFound replaces sql.ErrNoRows.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == sql.ErrNoRows && notFound != nil {
		return notFound
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code {
		case codeUniqueViolation:
			return core.NewUniqueViolationError(pqErr.Constraint, constraintFields[pqErr.Constraint])
		case codeForeignKeyViolation:
			return core.NewConflictError("record is still referenced: " + pqErr.Constraint)
		}
	}
	return err
}

// checkAffected returns notFound when a write matched no rows.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
