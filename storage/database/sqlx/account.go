package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

const accountColumns = "id_user, id_guru, id_siswa, username, email, password, role, created_at, updated_at, last_login"

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	q := `INSERT INTO pengguna (id_guru, id_siswa, username, email, password, role, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING ` + accountColumns
	err := getExec(repo.db, exec).GetContext(ctx, &acc, q,
		acc.TeacherID, acc.StudentID, acc.Username, acc.Email, acc.PasswordHash, acc.Role,
		acc.CreatedAt, acc.UpdatedAt, acc.LastLogin)
	return acc, mapError(err, nil)
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter, exec ...core.DBExecutor) (account.Account, error) {
	var (
		acc account.Account
		q   = "SELECT " + accountColumns + " FROM pengguna WHERE "
		arg interface{}
	)
	switch {
	case filter.ID != 0:
		q, arg = q+"id_user = $1", filter.ID
	case filter.Username != "":
		q, arg = q+"username = $1", filter.Username
	case filter.Email != "":
		q, arg = q+"email = $1", filter.Email
	case filter.TeacherID != 0:
		q, arg = q+"id_guru = $1", filter.TeacherID
	case filter.StudentID != 0:
		q, arg = q+"id_siswa = $1", filter.StudentID
	default:
		return acc, account.ErrNotFound
	}
	err := getExec(repo.db, exec).GetContext(ctx, &acc, q, arg)
	return acc, mapError(err, account.ErrNotFound)
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	q := `UPDATE pengguna SET id_guru = $2, id_siswa = $3, username = $4, email = $5, password = $6, role = $7,
		updated_at = $8, last_login = $9
		WHERE id_user = $1 RETURNING ` + accountColumns
	err := getExec(repo.db, exec).GetContext(ctx, &acc, q,
		acc.ID, acc.TeacherID, acc.StudentID, acc.Username, acc.Email, acc.PasswordHash, acc.Role,
		acc.UpdatedAt, acc.LastLogin)
	return acc, mapError(err, account.ErrNotFound)
}
