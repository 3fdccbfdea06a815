package inmemdb

import (
	"context"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) dashboard.Repository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) Totals(_ context.Context, _ ...core.DBExecutor) (dashboard.Totals, error) {
	var totals dashboard.Totals
	_ = repo.db.read(func(t *tables) error {
		totals = dashboard.Totals{
			Students: len(t.students),
			Teachers: len(t.teachers),
			Classes:  len(t.classes),
			Subjects: len(t.subjects),
		}
		return nil
	})
	return totals, nil
}

func (repo *dashboardRepository) GenderDistribution(_ context.Context, _ ...core.DBExecutor) (map[string]int, error) {
	dist := make(map[string]int)
	_ = repo.db.read(func(t *tables) error {
		for _, s := range t.students {
			dist[s.Gender]++
		}
		return nil
	})
	return dist, nil
}
