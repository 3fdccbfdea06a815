package news

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

type (
	Repository interface {
		CreatePost(ctx context.Context, p Post, exec ...core.DBExecutor) (Post, error)
		GetPost(ctx context.Context, id int, exec ...core.DBExecutor) (Post, error)
		// ListPosts returns the newest posts first; limit <= 0 means no limit.
		ListPosts(ctx context.Context, limit int, exec ...core.DBExecutor) ([]Post, error)
		UpdatePost(ctx context.Context, p Post, exec ...core.DBExecutor) (Post, error)
		DeletePost(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	// ImageStore persists uploaded images and returns their path relative to the upload root.
	ImageStore interface {
		Save(ctx context.Context, img Image) (string, error)
		Delete(ctx context.Context, path string) error
	}

	Service struct {
		repo   Repository
		images ImageStore
		logger core.Logger
	}
)

func NewService(repo Repository, images ImageStore, logger core.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

func (svc *Service) List(ctx context.Context) ([]Post, error) {
	return svc.repo.ListPosts(ctx, 0)
}

// Latest returns the newest n posts.
func (svc *Service) Latest(ctx context.Context, n int) ([]Post, error) {
	return svc.repo.ListPosts(ctx, n)
}

func (svc *Service) Get(ctx context.Context, id int) (Post, error) {
	return svc.repo.GetPost(ctx, id)
}

// Create publishes a post authored by acc.
func (svc *Service) Create(ctx context.Context, acc account.Account, in PostInput) (Post, error) {
	p := Post{AuthorID: acc.ID, Title: in.Title, Body: in.Body, PostedAt: timeNow()}
	if in.Image != nil {
		path, err := svc.images.Save(ctx, *in.Image)
		if err != nil {
			return Post{}, errors.Wrap(err, "saving image")
		}
		p.Image = null.StringFrom(path)
	}
	p, err := svc.repo.CreatePost(ctx, p)
	if err != nil {
		return Post{}, errors.Wrap(err, "creating post")
	}
	return svc.repo.GetPost(ctx, p.ID)
}

// Update edits a post. Only its author or an Admin may do so; a new image replaces the old one.
func (svc *Service) Update(ctx context.Context, acc account.Account, id int, in PostInput) (Post, error) {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if !acc.IsAdmin() && p.AuthorID != acc.ID {
		return Post{}, ErrEditDenied
	}

	if in.Image != nil {
		path, err := svc.images.Save(ctx, *in.Image)
		if err != nil {
			return Post{}, errors.Wrap(err, "saving image")
		}
		if p.Image.Valid {
			svc.deleteImage(ctx, p.Image.String)
		}
		p.Image = null.StringFrom(path)
	}
	p.Title = in.Title
	p.Body = in.Body

	if _, err = svc.repo.UpdatePost(ctx, p); err != nil {
		return Post{}, errors.Wrap(err, "updating post")
	}
	return svc.repo.GetPost(ctx, id)
}

// Delete removes a post. Only its author or an Admin may do so.
func (svc *Service) Delete(ctx context.Context, acc account.Account, id int) error {
	p, err := svc.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !acc.IsAdmin() && p.AuthorID != acc.ID {
		return ErrDeleteDenied
	}
	if err = svc.repo.DeletePost(ctx, id); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	if p.Image.Valid {
		svc.deleteImage(ctx, p.Image.String)
	}
	return nil
}

func (svc *Service) deleteImage(ctx context.Context, path string) {
	if err := svc.images.Delete(ctx, path); err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting image %s: %v", path, err), err)
	}
}
