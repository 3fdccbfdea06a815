package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
)

type newsApi struct {
	svc      *news.Service
	validate *validator.Validate
}

func registerNewsAPI(g *echo.Group, s *server) {
	api := newsApi{svc: s.deps.NewsSvc, validate: s.deps.Validate}
	authed := s.require(account.TierAuthenticated)

	bg := g.Group("/berita")

	bg.GET("/public", api.publicFeed)
	bg.GET("/public/all", api.listPublic)
	bg.GET("/public/:id", api.get)

	bg.GET("", api.list, authed)
	bg.POST("", api.create, authed)
	bg.PUT("/:id", api.update, authed)
	bg.DELETE("/:id", api.delete, authed)
}

// bindPost reads the multipart fields judul and isi and the optional gambar file.
// The returned cleanup closes the uploaded file.
func (api *newsApi) bindPost(ctx echo.Context) (news.PostInput, func(), error) {
	in := news.PostInput{
		Title: ctx.FormValue("judul"),
		Body:  ctx.FormValue("isi"),
	}
	cleanup := func() {}
	if err := in.Validate(api.validate); err != nil {
		return in, cleanup, err
	}

	fh, err := ctx.FormFile("gambar")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return in, cleanup, nil
	} else if err != nil {
		return in, cleanup, errors.Wrap(err, "reading gambar")
	}
	if err = news.CheckImage(news.Image{Filename: fh.Filename}); err != nil {
		return in, cleanup, err
	}
	f, err := fh.Open()
	if err != nil {
		return in, cleanup, errors.Wrap(err, "opening gambar")
	}
	in.Image = &news.Image{Filename: fh.Filename, Content: f}
	return in, func() { f.Close() }, nil
}

func (api *newsApi) publicFeed(ctx echo.Context) error {
	posts, err := api.svc.Latest(ctx.Request().Context(), news.PublicFeedSize)
	if err != nil {
		return errors.Wrap(err, "listing latest posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *newsApi) listPublic(ctx echo.Context) error {
	return api.list(ctx)
}

func (api *newsApi) list(ctx echo.Context) error {
	posts, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *newsApi) get(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *newsApi) create(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	in, cleanup, err := api.bindPost(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), acc, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *newsApi) update(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, cleanup, err := api.bindPost(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), acc, id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *newsApi) delete(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), acc, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Berita berhasil dihapus"})
}
