// Package inmemdb is an in-memory implementation of the repositories.
// It mirrors the unique and foreign key rules of the SQL schema.
package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

var errNoSQL = errors.New("inmemdb: SQL is not supported")

type (
	DB struct {
		txMu sync.Mutex   // serializes writers: one transaction (or lone write) at a time
		mu   sync.RWMutex // guards t
		t    *tables
	}

	tables struct {
		seq         map[string]int
		classes     map[int]roster.Class
		students    map[int]roster.Student
		teachers    map[int]roster.Teacher
		subjects    map[int]roster.Subject
		assignments map[int]roster.Assignment
		accounts    map[int]account.Account
		grades      map[int]academic.Grade
		attendance  map[int]academic.Attendance
		posts       map[int]news.Post
	}

	// txExecutor marks repository calls made inside InTx.
	txExecutor struct{}
)

func Open() *DB {
	return &DB{t: newTables()}
}

func newTables() *tables {
	return &tables{
		seq:         make(map[string]int),
		classes:     make(map[int]roster.Class),
		students:    make(map[int]roster.Student),
		teachers:    make(map[int]roster.Teacher),
		subjects:    make(map[int]roster.Subject),
		assignments: make(map[int]roster.Assignment),
		accounts:    make(map[int]account.Account),
		grades:      make(map[int]academic.Grade),
		attendance:  make(map[int]academic.Attendance),
		posts:       make(map[int]news.Post),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.classes {
		c.classes[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.teachers {
		c.teachers[k] = v
	}
	for k, v := range t.subjects {
		c.subjects[k] = v
	}
	for k, v := range t.assignments {
		c.assignments[k] = v
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.grades {
		c.grades[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	for k, v := range t.posts {
		c.posts[k] = v
	}
	return c
}

func (t *tables) nextID(table string) int {
	t.seq[table]++
	return t.seq[table]
}

// Reset drops every record.
func (db *DB) Reset() {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	db.mu.Lock()
	defer db.mu.Unlock()
	db.t = newTables()
}

// InTx runs fn while holding the writer lock; the tables are restored if fn fails.
func (db *DB) InTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.t.clone()
	db.mu.RUnlock()

	rollback := func() {
		db.mu.Lock()
		db.t = snapshot
		db.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(txExecutor{}); err != nil {
		rollback()
		return err
	}
	return nil
}

func inTx(exec []core.DBExecutor) bool {
	if len(exec) == 0 {
		return false
	}
	_, ok := exec[0].(txExecutor)
	return ok
}

func (db *DB) read(fn func(t *tables) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.t)
}

func (db *DB) write(exec []core.DBExecutor, fn func(t *tables) error) error {
	if !inTx(exec) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.t)
}

func (txExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (txExecutor) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (txExecutor) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (txExecutor) Rebind(query string) string { return query }
