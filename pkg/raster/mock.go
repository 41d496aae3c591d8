package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
)

// MockEngine is a render engine that produces synthetic page images
// without a content renderer. It exists for tests and for exercising
// the pipeline in environments where MuPDF is unavailable.
type MockEngine struct {
	// FailPage makes rendering fail for the page with this 0-based
	// index. Negative values disable failure injection.
	FailPage int

	// FailOpen makes Open fail for every document.
	FailOpen bool

	opens   atomic.Int64
	renders atomic.Int64
}

// NewMockEngine returns a mock engine with failure injection disabled.
func NewMockEngine() *MockEngine {
	return &MockEngine{FailPage: -1}
}

func (e *MockEngine) Info() EngineInfo {
	return EngineInfo{
		Name:        EngineMock,
		Description: "synthetic flat-color renderer",
		Enabled:     true,
	}
}

func (e *MockEngine) Open(doc *Document) (Session, error) {
	e.opens.Add(1)
	if e.FailOpen {
		return nil, fmt.Errorf("mock engine configured to fail open")
	}
	return &mockSession{engine: e}, nil
}

// Opens reports how many sessions have been requested.
func (e *MockEngine) Opens() int { return int(e.opens.Load()) }

// Renders reports how many pages have been rendered.
func (e *MockEngine) Renders() int { return int(e.renders.Load()) }

type mockSession struct {
	engine *MockEngine
}

func (s *mockSession) Render(ctx context.Context, page Page, dims PixelDimensions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page.Index == s.engine.FailPage {
		return nil, fmt.Errorf("mock engine configured to fail page %d", page.Index)
	}
	s.engine.renders.Add(1)

	// A flat fill whose shade varies with the page index, so pages
	// remain distinguishable in the output.
	shade := uint8(255 - (page.Index%8)*24)
	img := image.NewRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: shade, G: shade, B: shade, A: 255}}, image.Point{}, draw.Src)
	return img, nil
}

func (s *mockSession) Close() error { return nil }
