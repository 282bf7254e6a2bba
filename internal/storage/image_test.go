package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// pngHeader builds a PNG that declares w x h RGBA pixels but carries no
// pixel data. Decoding it fully would allocate w*h*4 bytes.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(kind)
		buf.Write(data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha
	chunk("IHDR", ihdr)
	chunk("IDAT", []byte{0x78, 0x9c, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01})
	chunk("IEND", nil)
	return buf.Bytes()
}

func dataURI(kind string, data []byte) string {
	return "data:image/" + kind + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	raw := encodePNG(t, 2, 2)

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "valid", uri: dataURI("png", raw)},
		{name: "missing comma", uri: "data:image/png;base64", wantErr: true},
		{name: "not an image", uri: "data:text/plain;base64,aGVsbG8=", wantErr: true},
		{name: "not base64", uri: "data:image/png;base64,@@@", wantErr: true},
		{name: "empty payload", uri: "data:image/png;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeDataURI(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, raw, data)
		})
	}
}

func TestNormalizeImage(t *testing.T) {
	t.Run("png stays png", func(t *testing.T) {
		out, err := NormalizeImage(encodePNG(t, 10, 5), 1280, DefaultMaxPixels)
		require.NoError(t, err)
		assert.Equal(t, "png", out.Ext)
		assert.Equal(t, "image/png", out.ContentType)
	})

	t.Run("jpeg stays jpeg", func(t *testing.T) {
		out, err := NormalizeImage(encodeJPEG(t, 10, 5), 1280, DefaultMaxPixels)
		require.NoError(t, err)
		assert.Equal(t, "jpg", out.Ext)
	})

	t.Run("large image is shrunk to fit", func(t *testing.T) {
		out, err := NormalizeImage(encodePNG(t, 400, 100), 200, DefaultMaxPixels)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out.Data))
		require.NoError(t, err)
		assert.Equal(t, 200, img.Bounds().Dx())
		assert.Equal(t, 50, img.Bounds().Dy())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := NormalizeImage([]byte("definitely not an image"), 1280, DefaultMaxPixels)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestNormalizeImage_PixelBudget(t *testing.T) {
	t.Run("declared dimensions over the default budget", func(t *testing.T) {
		_, err := NormalizeImage(pngHeader(40000, 40000), 1280, DefaultMaxPixels)
		require.ErrorIs(t, err, ErrInvalidImage)
		assert.Contains(t, err.Error(), "40000x40000")
	})

	t.Run("real image over a small budget", func(t *testing.T) {
		_, err := NormalizeImage(encodePNG(t, 400, 100), 1280, 30_000)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("exactly at the budget", func(t *testing.T) {
		_, err := NormalizeImage(encodePNG(t, 100, 100), 1280, 10_000)
		assert.NoError(t, err)
	})
}

func TestImageUploader_RejectsOversizedImage(t *testing.T) {
	dir := t.TempDir()
	uploader := NewImageUploader(NewLocalStorage(dir, "/media"), 1280, 100)

	_, err := uploader.Upload(context.Background(), dataURI("png", encodePNG(t, 20, 20)))
	require.ErrorIs(t, err, ErrInvalidImage)

	_, err = os.Stat(filepath.Join(dir, "recipes"))
	assert.True(t, os.IsNotExist(err))
}

func TestImageUploader_LocalStorage(t *testing.T) {
	dir := t.TempDir()
	uploader := NewImageUploader(NewLocalStorage(dir, "/media/"), 1280, 0)

	key, err := uploader.Upload(context.Background(), dataURI("png", encodePNG(t, 4, 4)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recipes/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "/media/"+key, uploader.URL(key))

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)

	uploader.Remove(context.Background(), key)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// removing twice is harmless
	uploader.Remove(context.Background(), key)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "/media")
	err := store.Save(context.Background(), "../outside.png", []byte("x"), "image/png")
	assert.Error(t, err)
	assert.Equal(t, "", store.URL(""))
}
