package raster

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Options tune a conversion beyond the raster spec. The zero value
// selects the MuPDF engine, JPEG output and one worker per CPU.
type Options struct {
	// Engine renders page content. Nil selects the MuPDF engine.
	Engine Engine

	// Encoder compresses rendered pages. Nil selects JPEG at the
	// default quality.
	Encoder Encoder

	// Workers bounds how many pages render concurrently. Values below
	// one fall back to runtime.GOMAXPROCS(0).
	Workers int

	// OnProgress, when set, is called after each page completes with
	// the number of finished pages and the page total. It may be
	// called from multiple goroutines concurrently.
	OnProgress func(done, total int)
}

func (o Options) engine() Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return NewFitzEngine()
}

func (o Options) encoder() Encoder {
	if o.Encoder != nil {
		return o.Encoder
	}
	return &JPEGEncoder{}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Convert rasterizes every page of the PDF in input and reassembles
// the results into a new PDF with identical page count and page
// geometry. The spec is validated before input is touched. On any
// failure the conversion aborts as a whole and no output is returned.
func Convert(ctx context.Context, input []byte, spec Spec, opts Options) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	doc, err := Load(input)
	if err != nil {
		return nil, err
	}
	return ConvertDocument(ctx, doc, spec, opts)
}

// ConvertDocument rasterizes an already loaded document. See Convert.
func ConvertDocument(ctx context.Context, doc *Document, spec Spec, opts Options) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	engine := opts.engine()
	encoder := opts.encoder()
	pages := doc.Pages()
	workers := opts.workers()
	if workers > len(pages) {
		workers = len(pages)
	}

	slog.Debug("starting conversion",
		"pages", len(pages),
		"dpi", spec.DPI,
		"engine", engine.Info().Name,
		"format", encoder.Format(),
		"workers", workers)

	// Results land in index-keyed slots; order is re-established here
	// no matter which worker finishes first.
	outputs := make([]OutputPage, len(pages))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	indexes := make(chan int)
	g.Go(func() error {
		defer close(indexes)
		for i := range pages {
			select {
			case indexes <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			session, err := engine.Open(doc)
			if err != nil {
				return &LoadError{Err: fmt.Errorf("open render session: %w", err)}
			}
			defer session.Close()
			for i := range indexes {
				out, err := convertPage(gctx, session, encoder, pages[i], spec)
				if err != nil {
					return err
				}
				outputs[i] = out
				done := int(completed.Add(1))
				if opts.OnProgress != nil {
					opts.OnProgress(done, len(pages))
				}
				slog.Debug("page converted",
					"page", i,
					"width_px", out.Image.Width,
					"height_px", out.Image.Height)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := Assemble(&out, outputs); err != nil {
		return nil, err
	}
	slog.Debug("conversion complete", "pages", len(pages), "output_bytes", out.Len())
	return out.Bytes(), nil
}

// convertPage runs one page through the render and encode stages.
func convertPage(ctx context.Context, session Session, encoder Encoder, page Page, spec Spec) (OutputPage, error) {
	dims := page.Pixels(spec.DPI)
	img, err := session.Render(ctx, page, dims)
	if err != nil {
		return OutputPage{}, &RenderError{Page: page.Index, Err: err}
	}
	if b := img.Bounds(); b.Dx() != dims.Width || b.Dy() != dims.Height {
		return OutputPage{}, &RenderError{
			Page: page.Index,
			Err:  fmt.Errorf("engine produced a %dx%d buffer, want %dx%d", b.Dx(), b.Dy(), dims.Width, dims.Height),
		}
	}

	encoded, err := encoder.Encode(img)
	if err != nil {
		return OutputPage{}, &EncodeError{Page: page.Index, Err: err}
	}
	return OutputPage{
		Index:    page.Index,
		WidthPt:  page.WidthPt,
		HeightPt: page.HeightPt,
		Image:    encoded,
	}, nil
}
