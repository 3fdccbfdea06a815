package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
)

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, NewsDir)
	require.NoError(t, err)
	ctx := context.Background()

	rel, err := store.Save(ctx, news.Image{Filename: "Upacara.JPG", Content: strings.NewReader("jpeg")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, NewsDir+"/"))
	assert.Equal(t, ".jpg", filepath.Ext(rel))

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(content))

	other, err := store.Save(ctx, news.Image{Filename: "Upacara.JPG", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.NotEqual(t, rel, other)

	tests := []struct {
		name    string
		rel     string
		wantErr bool
	}{
		{name: "outside of dir", rel: "../secret.txt", wantErr: true},
		{name: "dir itself", rel: NewsDir, wantErr: true},
		{name: "empty", rel: "", wantErr: true},
		{name: "saved file", rel: rel},
		{name: "already removed", rel: rel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Delete(ctx, tt.rel)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(other)))
	assert.NoError(t, err)
}

func TestLocalStore_rejectsNonImages(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, NewsDir)
	require.NoError(t, err)

	for _, name := range []string{"x.html", "noext", "foto.svg", "run.php.", "foto.png.exe"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(context.Background(), news.Image{Filename: name, Content: strings.NewReader("<script>")})
			assert.Error(t, err)
		})
	}

	entries, err := os.ReadDir(filepath.Join(root, NewsDir))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
