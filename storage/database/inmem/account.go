package inmemdb

import (
	"context"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

type accountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func (t *tables) checkAccount(acc account.Account) error {
	for id, other := range t.accounts {
		if id == acc.ID {
			continue
		}
		switch {
		case other.Username == acc.Username:
			return core.NewUniqueViolationError("pengguna_username_key", "username")
		case acc.Email.Valid && other.Email.Valid && other.Email.String == acc.Email.String:
			return core.NewUniqueViolationError("pengguna_email_key", "email")
		case acc.TeacherID.Valid && other.TeacherID.Valid && other.TeacherID.Int == acc.TeacherID.Int:
			return core.NewUniqueViolationError("pengguna_id_guru_key", "id_guru")
		case acc.StudentID.Valid && other.StudentID.Valid && other.StudentID.Int == acc.StudentID.Int:
			return core.NewUniqueViolationError("pengguna_id_siswa_key", "id_siswa")
		}
	}
	if acc.TeacherID.Valid {
		if _, ok := t.teachers[acc.TeacherID.Int]; !ok {
			return errTeacherRef
		}
	}
	if acc.StudentID.Valid {
		if _, ok := t.students[acc.StudentID.Int]; !ok {
			return errStudentRef
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if err := t.checkAccount(acc); err != nil {
			return err
		}
		acc.ID = t.nextID("pengguna")
		t.accounts[acc.ID] = acc
		return nil
	})
	return acc, err
}

func (repo *accountRepository) GetAccount(_ context.Context, filter account.GetFilter, _ ...core.DBExecutor) (account.Account, error) {
	var acc account.Account
	err := repo.db.read(func(t *tables) error {
		if filter.ID != 0 {
			var ok bool
			if acc, ok = t.accounts[filter.ID]; ok {
				return nil
			}
			return account.ErrNotFound
		}
		for _, found := range t.accounts {
			if matchAccount(found, filter) {
				acc = found
				return nil
			}
		}
		return account.ErrNotFound
	})
	return acc, err
}

// matchAccount applies the first non-zero field of filter.
func matchAccount(acc account.Account, filter account.GetFilter) bool {
	switch {
	case filter.Username != "":
		return acc.Username == filter.Username
	case filter.Email != "":
		return acc.Email.Valid && acc.Email.String == filter.Email
	case filter.TeacherID != 0:
		return acc.TeacherID.Valid && acc.TeacherID.Int == filter.TeacherID
	case filter.StudentID != 0:
		return acc.StudentID.Valid && acc.StudentID.Int == filter.StudentID
	}
	return false
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	err := repo.db.write(exec, func(t *tables) error {
		orig, ok := t.accounts[acc.ID]
		if !ok {
			return account.ErrNotFound
		}
		if err := t.checkAccount(acc); err != nil {
			return err
		}
		acc.CreatedAt = orig.CreatedAt
		t.accounts[acc.ID] = acc
		return nil
	})
	return acc, err
}
