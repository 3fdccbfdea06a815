package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
)

type newsRepository struct {
	db *DB
}

func NewNewsRepository(db *DB) news.Repository {
	return &newsRepository{db: db}
}

// withAuthor fills the author display name (teacher or student name, else username) and role.
func (t *tables) withAuthor(p news.Post) news.Post {
	p.AuthorName, p.AuthorRole = null.String{}, null.String{}
	acc, ok := t.accounts[p.AuthorID]
	if !ok {
		return p
	}
	p.AuthorRole = null.StringFrom(string(acc.Role))
	p.AuthorName = null.StringFrom(acc.Username)
	if acc.TeacherID.Valid {
		if teacher, ok := t.teachers[acc.TeacherID.Int]; ok {
			p.AuthorName = null.StringFrom(teacher.Name)
		}
	} else if acc.StudentID.Valid {
		if s, ok := t.students[acc.StudentID.Int]; ok {
			p.AuthorName = null.StringFrom(s.Name)
		}
	}
	return p
}

func (repo *newsRepository) CreatePost(_ context.Context, p news.Post, exec ...core.DBExecutor) (news.Post, error) {
	p.AuthorName, p.AuthorRole = null.String{}, null.String{}
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.accounts[p.AuthorID]; !ok {
			return errAccountRef
		}
		p.ID = t.nextID("berita")
		t.posts[p.ID] = p
		return nil
	})
	return p, err
}

func (repo *newsRepository) GetPost(_ context.Context, id int, _ ...core.DBExecutor) (news.Post, error) {
	var p news.Post
	err := repo.db.read(func(t *tables) error {
		found, ok := t.posts[id]
		if !ok {
			return news.ErrPostNotFound
		}
		p = t.withAuthor(found)
		return nil
	})
	return p, err
}

func (repo *newsRepository) ListPosts(_ context.Context, limit int, _ ...core.DBExecutor) ([]news.Post, error) {
	posts := make([]news.Post, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, p := range t.posts {
			posts = append(posts, t.withAuthor(p))
		}
		return nil
	})
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PostedAt.Equal(posts[j].PostedAt) {
			return posts[i].PostedAt.After(posts[j].PostedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (repo *newsRepository) UpdatePost(_ context.Context, p news.Post, exec ...core.DBExecutor) (news.Post, error) {
	err := repo.db.write(exec, func(t *tables) error {
		orig, ok := t.posts[p.ID]
		if !ok {
			return news.ErrPostNotFound
		}
		orig.Title, orig.Body, orig.Image = p.Title, p.Body, p.Image
		t.posts[p.ID] = orig
		p = orig
		return nil
	})
	return p, err
}

func (repo *newsRepository) DeletePost(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.posts[id]; !ok {
			return news.ErrPostNotFound
		}
		delete(t.posts, id)
		return nil
	})
}
