package raster

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Load parses and validates in-memory PDF bytes and resolves the
// geometry of every page. The returned Document keeps a reference to
// data; callers must not modify the slice afterwards.
func Load(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, &LoadError{Err: errors.New("empty input")}
	}
	ctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, &LoadError{Err: err}
	}
	if ctx.PageCount == 0 {
		return nil, &LoadError{Err: errors.New("document has no pages")}
	}

	pages := make([]Page, 0, ctx.PageCount)
	for i := 0; i < ctx.PageCount; i++ {
		page, err := resolvePage(ctx, i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return &Document{data: data, pages: pages}, nil
}

// resolvePage extracts the media box and rotation of one page.
// index is 0-based; pdfcpu numbers pages from 1.
func resolvePage(ctx *model.Context, index int) (Page, error) {
	_, _, attrs, err := ctx.PageDict(index+1, false)
	if err != nil {
		return Page{}, &GeometryError{Page: index, Err: err}
	}
	if attrs == nil || attrs.MediaBox == nil {
		return Page{}, &GeometryError{Page: index, Err: errors.New("media box missing")}
	}

	w, h := attrs.MediaBox.Width(), attrs.MediaBox.Height()
	if !isUsableExtent(w) || !isUsableExtent(h) {
		return Page{}, &GeometryError{Page: index, Err: fmt.Errorf("degenerate media box %vx%v pt", w, h)}
	}

	rot := attrs.Rotate % 360
	if rot < 0 {
		rot += 360
	}
	if rot%90 != 0 {
		return Page{}, &GeometryError{Page: index, Err: fmt.Errorf("unsupported page rotation %d", attrs.Rotate)}
	}

	return Page{Index: index, WidthPt: w, HeightPt: h, Rotation: rot}, nil
}

func isUsableExtent(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
