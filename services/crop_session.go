// services/crop_session.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"time"

	"betegna-backend/storage"
)

// Aspect is a fixed width/height ratio chosen per call site.
type Aspect float64

const (
	// AspectCover is the square crop used for cover images.
	AspectCover Aspect = 1.0
	// AspectBanner is the wide crop used for profile banners.
	AspectBanner Aspect = 4.166
)

const aspectTolerance = 0.01

var (
	ErrSessionOpen   = errors.New("crop session already open")
	ErrSessionClosed = errors.New("crop session not open")
	ErrBadCrop       = errors.New("crop rectangle invalid")
)

// CropSession is the modal-scoped state machine taking a raw image to a
// cropped one: closed -> open(raw) -> confirmed | cancelled -> closed.
// The aspect ratio is fixed at construction and not caller-configurable.
type CropSession struct {
	aspect Aspect

	open   bool
	img    image.Image
	format string
	name   string
}

func NewCropSession(aspect Aspect) *CropSession {
	return &CropSession{aspect: aspect}
}

// Open decodes the raw image fully into memory and moves the session to
// the open state. The pending filename is carried for the derived file.
func (cs *CropSession) Open(raw storage.File) error {
	if cs.open {
		return ErrSessionOpen
	}

	img, format, err := image.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	cs.img = img
	cs.format = format
	cs.name = raw.Name
	cs.open = true
	return nil
}

// Bounds returns the raw image bounds, valid only while open.
func (cs *CropSession) Bounds() image.Rectangle {
	if !cs.open {
		return image.Rectangle{}
	}
	return cs.img.Bounds()
}

// Confirm crops to rect, re-encodes, and returns the derived file. The
// rect must lie within bounds and match the session aspect. The session
// returns to closed whether or not an asset was produced on a prior call.
func (cs *CropSession) Confirm(rect image.Rectangle) (storage.File, error) {
	if !cs.open {
		return storage.File{}, ErrSessionClosed
	}

	rect = rect.Canon()
	if rect.Dx() <= 0 || rect.Dy() <= 0 || !rect.In(cs.img.Bounds()) {
		return storage.File{}, fmt.Errorf("%w: %v outside %v", ErrBadCrop, rect, cs.img.Bounds())
	}

	ratio := float64(rect.Dx()) / float64(rect.Dy())
	if math.Abs(ratio-float64(cs.aspect)) > aspectTolerance*float64(cs.aspect) {
		return storage.File{}, fmt.Errorf("%w: ratio %.3f, want %.3f", ErrBadCrop, ratio, float64(cs.aspect))
	}

	cropped := cropImage(cs.img, rect)

	var buf bytes.Buffer
	var contentType string
	switch cs.format {
	case "png":
		contentType = "image/png"
		if err := png.Encode(&buf, cropped); err != nil {
			return storage.File{}, err
		}
	default:
		contentType = "image/jpeg"
		if err := jpeg.Encode(&buf, cropped, nil); err != nil {
			return storage.File{}, err
		}
	}

	name := cs.name
	if name == "" {
		ext := "jpg"
		if cs.format == "png" {
			ext = "png"
		}
		name = fmt.Sprintf("cropped_%d.%s", time.Now().UnixMilli(), ext)
	}

	cs.reset()
	return storage.File{Name: name, ContentType: contentType, Data: buf.Bytes()}, nil
}

// Cancel discards the raw image without producing an asset.
func (cs *CropSession) Cancel() {
	cs.reset()
}

func (cs *CropSession) reset() {
	cs.open = false
	cs.img = nil
	cs.format = ""
	cs.name = ""
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

func cropImage(img image.Image, rect image.Rectangle) image.Image {
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}
