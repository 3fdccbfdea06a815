package sqlxrepos

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
)

// postSelect joins each post with the display name and role of its author.
const postSelect = `SELECT b.id_berita, b.id_user, b.judul, b.isi, b.gambar, b.tanggal_post,
		COALESCE(g.nama, s.nama, p.username) AS nama_penulis, p.role AS role_penulis
	FROM berita b
	LEFT JOIN pengguna p ON p.id_user = b.id_user
	LEFT JOIN guru g ON g.id_guru = p.id_guru
	LEFT JOIN siswa s ON s.id_siswa = p.id_siswa`

const postColumns = "id_berita, id_user, judul, isi, gambar, tanggal_post"

type newsRepository struct {
	db *sqlx.DB
}

func NewNewsRepository(db *sqlx.DB) news.Repository {
	return &newsRepository{db: db}
}

func (repo *newsRepository) CreatePost(ctx context.Context, p news.Post, exec ...core.DBExecutor) (news.Post, error) {
	q := "INSERT INTO berita (id_user, judul, isi, gambar, tanggal_post) VALUES ($1, $2, $3, $4, $5) RETURNING " + postColumns
	err := getExec(repo.db, exec).GetContext(ctx, &p, q, p.AuthorID, p.Title, p.Body, p.Image, p.PostedAt)
	return p, mapError(err, nil)
}

func (repo *newsRepository) GetPost(ctx context.Context, id int, exec ...core.DBExecutor) (news.Post, error) {
	var p news.Post
	err := getExec(repo.db, exec).GetContext(ctx, &p, postSelect+" WHERE b.id_berita = $1", id)
	return p, mapError(err, news.ErrPostNotFound)
}

func (repo *newsRepository) ListPosts(ctx context.Context, limit int, exec ...core.DBExecutor) ([]news.Post, error) {
	q := postSelect + " ORDER BY b.tanggal_post DESC, b.id_berita DESC"
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}
	posts := make([]news.Post, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &posts, q)
	return posts, errors.Wrap(err, "selecting berita")
}

func (repo *newsRepository) UpdatePost(ctx context.Context, p news.Post, exec ...core.DBExecutor) (news.Post, error) {
	q := "UPDATE berita SET judul = $2, isi = $3, gambar = $4 WHERE id_berita = $1 RETURNING " + postColumns
	err := getExec(repo.db, exec).GetContext(ctx, &p, q, p.ID, p.Title, p.Body, p.Image)
	return p, mapError(err, news.ErrPostNotFound)
}

func (repo *newsRepository) DeletePost(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM berita WHERE id_berita = $1", id)
	if err != nil {
		return mapError(err, nil)
	}
	return checkAffected(res, news.ErrPostNotFound)
}
