package storage

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixshop/internal/imaging"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "stylized-1.png", want: "stylized-1.png"},
		{key: "/abs/out.png", want: "abs/out.png"},
		{key: `collage\anime.png`, want: "collage/anime.png"},
		{key: "a/../b.png", want: "b.png"},
		{key: "../escape.png", wantErr: true},
		{key: "  ", wantErr: true},
		{key: ".", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.key)
		if tc.wantErr {
			assert.Error(t, err, tc.key)
			continue
		}
		require.NoError(t, err, tc.key)
		assert.Equal(t, tc.want, got)
	}
}

func TestWriteImageUsesMimeExtension(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	img, err := imaging.New("whatever.jpg", "image/png", pngBytes(t))
	require.NoError(t, err)

	key, err := store.WriteImage(context.Background(), "collage/anime.jpg", img)
	require.NoError(t, err)
	assert.Equal(t, "collage/anime.png", key)

	path, err := store.Path(key)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bytes(), data)
}

func TestWriteHonorsContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Write(ctx, "x.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadImageSniffsType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.bin")
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o644))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType())
	assert.Equal(t, "photo.bin", img.Name())

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0o644))
	_, err = LoadImage(textPath)
	assert.ErrorIs(t, err, imaging.ErrMalformed)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
