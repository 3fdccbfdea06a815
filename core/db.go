package core

import (
	"context"
	"database/sql"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		Rebind(query string) string
	}

	// Transactor runs fn inside a single transaction: committed when fn returns nil, rolled back otherwise.
	Transactor interface {
		InTx(ctx context.Context, fn func(exec DBExecutor) error) error
	}
)

// Pagination is the simple offset/limit window used by list endpoints.
type Pagination struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Clean clamps the window to sane values.
func (p *Pagination) Clean() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	} else if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// Window returns the [start, end) bounds of the page inside a list of n items.
func (p Pagination) Window(n int) (int, int) {
	p.Clean()
	start := p.Skip
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
