package news

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

// PublicFeedSize is the number of posts on the public front page.
const PublicFeedSize = 6

var (
	ErrPostNotFound = core.NewNotFoundError("Berita tidak ditemukan")
	ErrEditDenied   = core.NewForbiddenError("Anda tidak memiliki akses untuk mengedit berita ini")
	ErrDeleteDenied = core.NewForbiddenError("Anda tidak memiliki akses untuk menghapus berita ini")
)

// Post (berita) is a news post. AuthorName and AuthorRole are resolved from the author's account.
type Post struct {
	ID         int         `json:"id_berita" db:"id_berita"`
	AuthorID   int         `json:"id_user" db:"id_user"`
	Title      string      `json:"judul" db:"judul"`
	Body       string      `json:"isi" db:"isi"`
	Image      null.String `json:"gambar" db:"gambar"`
	PostedAt   time.Time   `json:"tanggal_post" db:"tanggal_post"`
	AuthorName null.String `json:"nama_penulis" db:"nama_penulis"`
	AuthorRole null.String `json:"role_penulis" db:"role_penulis"`
}

// ImageExts lists the accepted image file extensions, lowercased.
var ImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Image is an uploaded picture attached to a post.
type Image struct {
	Filename string
	Content  io.Reader
}

// Ext returns the lowercased file extension, or "" when it is not an accepted image type.
func (img Image) Ext() string {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	for _, ok := range ImageExts {
		if ext == ok {
			return ext
		}
	}
	return ""
}

// CheckImage rejects uploads whose name does not carry an accepted image extension.
func CheckImage(img Image) error {
	if img.Ext() == "" {
		return core.NewValidationError(nil, core.FieldError{
			Field: "gambar",
			Error: "gambar must be one of: " + strings.Join(ImageExts, ", "),
		})
	}
	return nil
}

// PostInput is the (multipart) payload used to create or edit a Post.
type PostInput struct {
	Title string `form:"judul" json:"judul" validate:"required,max=150"`
	Body  string `form:"isi" json:"isi" validate:"required"`
	Image *Image `form:"-" json:"-"`
}

func (in *PostInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Body = core.CleanString(in.Body)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.Image != nil {
		return CheckImage(*in.Image)
	}
	return nil
}

var timeNow = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
