package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/nfnt/resize"
	"github.com/signintech/gopdf"
)

// FitzEngine renders page content with MuPDF through go-fitz.
type FitzEngine struct{}

// NewFitzEngine returns the MuPDF-backed render engine.
func NewFitzEngine() *FitzEngine { return &FitzEngine{} }

func (e *FitzEngine) Info() EngineInfo {
	return EngineInfo{
		Name:        EngineMuPDF,
		Description: "MuPDF content renderer",
		Enabled:     fitzAvailable(),
	}
}

func (e *FitzEngine) Open(doc *Document) (Session, error) {
	fd, err := fitz.NewFromMemory(doc.Data())
	if err != nil {
		return nil, fmt.Errorf("open mupdf document: %w", err)
	}
	return &fitzSession{doc: fd}, nil
}

type fitzSession struct {
	doc *fitz.Document
}

func (s *fitzSession) Render(ctx context.Context, page Page, dims PixelDimensions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dpi := float64(dims.Width) * pointsPerInch / page.WidthPt
	img, err := s.doc.ImageDPI(page.Index, dpi)
	if err != nil {
		return nil, err
	}
	return conformImage(img, page, dims), nil
}

func (s *fitzSession) Close() error {
	return s.doc.Close()
}

// conformImage maps a MuPDF buffer onto the requested dimensions.
// MuPDF applies the page rotation while rendering, so rotated pages
// come back transposed relative to the media box and are turned back
// first. MuPDF's own rounding can also leave the buffer a pixel off
// the requested size, which a Lanczos resample corrects.
func conformImage(img image.Image, page Page, dims PixelDimensions) image.Image {
	switch page.Rotation {
	case 90:
		img = rotateQuarter(img, 3)
	case 180:
		img = rotateQuarter(img, 2)
	case 270:
		img = rotateQuarter(img, 1)
	}
	if b := img.Bounds(); b.Dx() == dims.Width && b.Dy() == dims.Height {
		return img
	}
	return resize.Resize(uint(dims.Width), uint(dims.Height), img, resize.Lanczos3)
}

// rotateQuarter returns img rotated clockwise by turns quarter turns.
// turns must be 1, 2 or 3.
func rotateQuarter(img image.Image, turns int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if turns == 2 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch turns {
			case 1:
				dst.Set(h-1-y, x, c)
			case 2:
				dst.Set(w-1-x, h-1-y, c)
			case 3:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

var (
	fitzProbeOnce sync.Once
	fitzProbeOK   bool
)

// fitzAvailable reports whether the MuPDF runtime can be loaded. The
// probe opens a small throwaway document once and caches the result.
func fitzAvailable() bool {
	fitzProbeOnce.Do(func() {
		pdf := &gopdf.GoPdf{}
		pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: 72, H: 72}})
		pdf.AddPage()
		var buf bytes.Buffer
		if _, err := pdf.WriteTo(&buf); err != nil {
			return
		}
		doc, err := fitz.NewFromMemory(buf.Bytes())
		if err != nil {
			return
		}
		doc.Close()
		fitzProbeOK = true
	})
	return fitzProbeOK
}
