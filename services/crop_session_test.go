package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"betegna-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFile(t *testing.T, name string, w, h int) storage.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return storage.File{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

func jpegFile(t *testing.T, name string, w, h int) storage.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return storage.File{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}
}

func TestCropSessionLifecycle(t *testing.T) {
	cs := NewCropSession(AspectCover)

	// Confirm before open fails.
	_, err := cs.Confirm(image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrSessionClosed)

	require.NoError(t, cs.Open(pngFile(t, "raw.png", 100, 100)))
	assert.Equal(t, image.Rect(0, 0, 100, 100), cs.Bounds())

	// Opening an open session fails.
	err = cs.Open(pngFile(t, "other.png", 10, 10))
	assert.ErrorIs(t, err, ErrSessionOpen)

	out, err := cs.Confirm(image.Rect(10, 10, 60, 60))
	require.NoError(t, err)
	assert.Equal(t, "raw.png", out.Name)
	assert.Equal(t, "image/png", out.ContentType)

	decoded, _, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())

	// Confirm closed the session; a second confirm fails.
	_, err = cs.Confirm(image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCropSessionCancel(t *testing.T) {
	cs := NewCropSession(AspectCover)
	require.NoError(t, cs.Open(pngFile(t, "raw.png", 50, 50)))

	cs.Cancel()
	_, err := cs.Confirm(image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrSessionClosed)

	// Cancelled sessions can be reopened.
	require.NoError(t, cs.Open(pngFile(t, "again.png", 50, 50)))
}

func TestCropSessionRejectsOutOfBounds(t *testing.T) {
	cs := NewCropSession(AspectCover)
	require.NoError(t, cs.Open(pngFile(t, "raw.png", 100, 100)))

	_, err := cs.Confirm(image.Rect(50, 50, 150, 150))
	assert.ErrorIs(t, err, ErrBadCrop)

	// Session stays open after a rejected rect.
	_, err = cs.Confirm(image.Rect(0, 0, 80, 80))
	assert.NoError(t, err)
}

func TestCropSessionRejectsWrongAspect(t *testing.T) {
	cs := NewCropSession(AspectCover)
	require.NoError(t, cs.Open(pngFile(t, "raw.png", 100, 100)))

	_, err := cs.Confirm(image.Rect(0, 0, 80, 40))
	require.ErrorIs(t, err, ErrBadCrop)
	assert.Contains(t, err.Error(), "ratio")
}

func TestCropSessionBannerAspect(t *testing.T) {
	cs := NewCropSession(AspectBanner)
	require.NoError(t, cs.Open(jpegFile(t, "banner.jpg", 500, 200)))

	// 417x100 is within the banner tolerance of 4.166.
	out, err := cs.Confirm(image.Rect(0, 0, 417, 100))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.ContentType)

	cs = NewCropSession(AspectBanner)
	require.NoError(t, cs.Open(jpegFile(t, "banner.jpg", 500, 200)))
	_, err = cs.Confirm(image.Rect(0, 0, 200, 100))
	assert.ErrorIs(t, err, ErrBadCrop)
}

func TestCropSessionCanonicalizesRect(t *testing.T) {
	cs := NewCropSession(AspectCover)
	require.NoError(t, cs.Open(pngFile(t, "raw.png", 100, 100)))

	// Inverted corners canonicalize to the same 40x40 crop.
	out, err := cs.Confirm(image.Rect(50, 50, 10, 10))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())
}

func TestCropSessionFallbackName(t *testing.T) {
	cs := NewCropSession(AspectCover)

	f := pngFile(t, "", 50, 50)
	require.NoError(t, cs.Open(f))

	out, err := cs.Confirm(image.Rect(0, 0, 50, 50))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.Name, "cropped_"))
	assert.True(t, strings.HasSuffix(out.Name, ".png"))
}

func TestCropSessionRejectsGarbage(t *testing.T) {
	cs := NewCropSession(AspectCover)
	err := cs.Open(storage.File{Name: "bad.jpg", Data: []byte("not an image")})
	require.Error(t, err)

	// Failed open leaves the session closed.
	_, err = cs.Confirm(image.Rect(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrSessionClosed)
}
