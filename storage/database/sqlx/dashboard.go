package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
)

type dashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.Repository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) Totals(ctx context.Context, exec ...core.DBExecutor) (dashboard.Totals, error) {
	var t dashboard.Totals
	q := `SELECT
		(SELECT count(*) FROM siswa) AS total_siswa,
		(SELECT count(*) FROM guru) AS total_guru,
		(SELECT count(*) FROM kelas) AS total_kelas,
		(SELECT count(*) FROM mata_pelajaran) AS total_mapel`
	err := getExec(repo.db, exec).GetContext(ctx, &t, q)
	return t, errors.Wrap(err, "counting totals")
}

func (repo *dashboardRepository) GenderDistribution(ctx context.Context, exec ...core.DBExecutor) (map[string]int, error) {
	var rows []struct {
		Gender string `db:"jenis_kelamin"`
		Count  int    `db:"total"`
	}
	q := "SELECT jenis_kelamin, count(*) AS total FROM siswa GROUP BY jenis_kelamin"
	if err := getExec(repo.db, exec).SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "counting siswa by gender")
	}
	dist := make(map[string]int, len(rows))
	for _, r := range rows {
		dist[r.Gender] = r.Count
	}
	return dist, nil
}
