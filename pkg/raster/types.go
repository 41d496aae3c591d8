// Package raster converts PDF documents into visually equivalent,
// image-only PDF documents. Every source page is rendered to a single
// full-page raster image at a caller-chosen resolution and placed on an
// output page with the same physical dimensions as the original.
package raster

import "fmt"

// DefaultDPI is the render resolution used when the caller does not
// request one. At 72 dpi one PDF point maps to one pixel.
const DefaultDPI = 72

// Spec carries the conversion parameters. It is supplied once per
// conversion and applies uniformly to all pages.
type Spec struct {
	// DPI is the render resolution in dots per inch. Must be positive.
	DPI int
}

// Validate checks the spec before any document is opened.
func (s Spec) Validate() error {
	if s.DPI <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("dpi must be a positive integer, got %d", s.DPI)}
	}
	return nil
}

// Page describes the geometry of a single source page.
type Page struct {
	// Index is the 0-based position of the page in the document.
	Index int

	// WidthPt and HeightPt are the unrotated media box dimensions in
	// points (1/72 inch). Always positive for a loaded document.
	WidthPt  float64
	HeightPt float64

	// Rotation is the page's display rotation, normalized to one of
	// 0, 90, 180 or 270 degrees. It never alters WidthPt or HeightPt.
	Rotation int
}

// PixelDimensions is the raster size of a page at some resolution.
// Both extents are at least 1.
type PixelDimensions struct {
	Width  int
	Height int
}

// Document is a parsed source document with resolved page geometry.
// It is immutable once loaded and safe to share across goroutines.
type Document struct {
	data  []byte
	pages []Page
}

// Data returns the raw bytes the document was loaded from. Callers
// must treat the slice as read-only.
func (d *Document) Data() []byte { return d.data }

// Pages returns the ordered page descriptors. Indexes are sequential
// starting at 0.
func (d *Document) Pages() []Page { return d.pages }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return len(d.pages) }

// OutputPage is a fully converted page awaiting assembly: the source
// geometry plus the encoded image that will cover it.
type OutputPage struct {
	Index    int
	WidthPt  float64
	HeightPt float64
	Image    EncodedImage
}
