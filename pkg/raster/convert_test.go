package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/KyleBrandon/flatbed/tests/testutils"
)

// recordingEngine wraps another engine and records the pixel
// dimensions requested for each page.
type recordingEngine struct {
	inner Engine

	mu   sync.Mutex
	dims map[int]PixelDimensions
}

func newRecordingEngine(inner Engine) *recordingEngine {
	return &recordingEngine{inner: inner, dims: make(map[int]PixelDimensions)}
}

func (e *recordingEngine) Info() EngineInfo { return e.inner.Info() }

func (e *recordingEngine) Open(doc *Document) (Session, error) {
	session, err := e.inner.Open(doc)
	if err != nil {
		return nil, err
	}
	return &recordingSession{engine: e, inner: session}, nil
}

func (e *recordingEngine) requested(page int) (PixelDimensions, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dims, ok := e.dims[page]
	return dims, ok
}

type recordingSession struct {
	engine *recordingEngine
	inner  Session
}

func (s *recordingSession) Render(ctx context.Context, page Page, dims PixelDimensions) (image.Image, error) {
	s.engine.mu.Lock()
	s.engine.dims[page.Index] = dims
	s.engine.mu.Unlock()
	return s.inner.Render(ctx, page, dims)
}

func (s *recordingSession) Close() error { return s.inner.Close() }

// failEncoder always refuses to compress.
type failEncoder struct{}

func (failEncoder) Format() ImageFormat { return FormatJPEG }

func (failEncoder) Encode(img image.Image) (EncodedImage, error) {
	return EncodedImage{}, errors.New("compressor jammed")
}

func TestConvert_GeometryParity(t *testing.T) {
	sizes := []testutils.PageSize{testutils.Letter, testutils.A4, {W: 200, H: 400}}
	input := testutils.BuildPDF(t, sizes...)

	out, err := Convert(context.Background(), input, Spec{DPI: 144}, Options{
		Engine:  NewMockEngine(),
		Workers: 4,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	doc, err := Load(out)
	if err != nil {
		t.Fatalf("Output does not load: %v", err)
	}
	if doc.PageCount() != len(sizes) {
		t.Fatalf("Expected %d pages, got %d", len(sizes), doc.PageCount())
	}
	for i, page := range doc.Pages() {
		if math.Abs(page.WidthPt-sizes[i].W) > 1e-6 || math.Abs(page.HeightPt-sizes[i].H) > 1e-6 {
			t.Errorf("Page %d: expected %vx%v pt, got %vx%v", i, sizes[i].W, sizes[i].H, page.WidthPt, page.HeightPt)
		}
	}
}

func TestConvert_PixelDimensionsAtDPI(t *testing.T) {
	input := testutils.BuildPDF(t, testutils.Letter)

	tests := []struct {
		dpi        int
		wantWidth  int
		wantHeight int
	}{
		{72, 612, 792},
		{300, 2550, 3300},
	}

	for _, tt := range tests {
		engine := newRecordingEngine(NewMockEngine())
		if _, err := Convert(context.Background(), input, Spec{DPI: tt.dpi}, Options{Engine: engine}); err != nil {
			t.Fatalf("Convert at %d dpi failed: %v", tt.dpi, err)
		}
		dims, ok := engine.requested(0)
		if !ok {
			t.Fatalf("Page 0 was never rendered at %d dpi", tt.dpi)
		}
		if dims.Width != tt.wantWidth || dims.Height != tt.wantHeight {
			t.Errorf("At %d dpi expected %dx%d buffer, got %dx%d",
				tt.dpi, tt.wantWidth, tt.wantHeight, dims.Width, dims.Height)
		}
	}
}

func TestConvert_OrderPreserved(t *testing.T) {
	var sizes []testutils.PageSize
	for i := 1; i <= 10; i++ {
		sizes = append(sizes, testutils.PageSize{W: float64(100 * i), H: 400})
	}
	input := testutils.BuildPDF(t, sizes...)

	out, err := Convert(context.Background(), input, Spec{DPI: 72}, Options{
		Engine:  NewMockEngine(),
		Workers: 8,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	doc, err := Load(out)
	if err != nil {
		t.Fatalf("Output does not load: %v", err)
	}
	for i, page := range doc.Pages() {
		want := float64(100 * (i + 1))
		if math.Abs(page.WidthPt-want) > 1e-6 {
			t.Errorf("Page %d: expected width %v, got %v (pages out of order?)", i, want, page.WidthPt)
		}
	}
}

func TestConvert_FailureAtomicity(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		failPage int
	}{
		{"single page", 1, 0},
		{"middle page of three", 3, 1},
		{"last page", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizes := make([]testutils.PageSize, tt.pages)
			for i := range sizes {
				sizes[i] = testutils.Letter
			}
			engine := NewMockEngine()
			engine.FailPage = tt.failPage

			out, err := Convert(context.Background(), testutils.BuildPDF(t, sizes...), Spec{DPI: 72}, Options{
				Engine:  engine,
				Workers: 2,
			})
			if err == nil {
				t.Fatal("Expected conversion to fail")
			}
			if out != nil {
				t.Error("Expected no output document on failure")
			}

			var re *RenderError
			if !errors.As(err, &re) {
				t.Fatalf("Expected RenderError, got %T: %v", err, err)
			}
			if re.Page != tt.failPage {
				t.Errorf("Expected failing page %d, got %d", tt.failPage, re.Page)
			}
		})
	}
}

func TestConvert_InvalidDPIRejectedBeforeLoad(t *testing.T) {
	engine := NewMockEngine()
	garbage := []byte("not a pdf at all")

	for _, dpi := range []int{0, -3} {
		out, err := Convert(context.Background(), garbage, Spec{DPI: dpi}, Options{Engine: engine})
		if err == nil {
			t.Fatalf("Expected error for dpi %d", dpi)
		}
		if out != nil {
			t.Errorf("Expected no output for dpi %d", dpi)
		}

		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("Expected ConfigError for dpi %d, got %T: %v", dpi, err, err)
		}
		var le *LoadError
		if errors.As(err, &le) {
			t.Errorf("Spec validation must precede document loading for dpi %d", dpi)
		}
	}

	if engine.Opens() != 0 {
		t.Errorf("Engine was opened %d times before validation", engine.Opens())
	}
}

func TestConvert_EncodeFailureReportsPage(t *testing.T) {
	input := testutils.BuildPDF(t, testutils.Letter)

	out, err := Convert(context.Background(), input, Spec{DPI: 72}, Options{
		Engine:  NewMockEngine(),
		Encoder: failEncoder{},
	})
	if err == nil {
		t.Fatal("Expected conversion to fail")
	}
	if out != nil {
		t.Error("Expected no output document on failure")
	}

	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Fatalf("Expected EncodeError, got %T: %v", err, err)
	}
	if ee.Page != 0 {
		t.Errorf("Expected failing page 0, got %d", ee.Page)
	}
}

func TestConvert_SessionOpenFailure(t *testing.T) {
	engine := NewMockEngine()
	engine.FailOpen = true

	_, err := Convert(context.Background(), testutils.BuildPDF(t, testutils.Letter), Spec{DPI: 72}, Options{Engine: engine})
	if err == nil {
		t.Fatal("Expected conversion to fail")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Expected LoadError, got %T: %v", err, err)
	}
}

func TestConvert_Progress(t *testing.T) {
	const pageCount = 6
	sizes := make([]testutils.PageSize, pageCount)
	for i := range sizes {
		sizes[i] = testutils.Letter
	}

	var mu sync.Mutex
	var dones []int
	_, err := Convert(context.Background(), testutils.BuildPDF(t, sizes...), Spec{DPI: 72}, Options{
		Engine:  NewMockEngine(),
		Workers: 3,
		OnProgress: func(done, total int) {
			if total != pageCount {
				t.Errorf("Expected total %d, got %d", pageCount, total)
			}
			mu.Lock()
			dones = append(dones, done)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(dones) != pageCount {
		t.Fatalf("Expected %d progress calls, got %d", pageCount, len(dones))
	}
	sort.Ints(dones)
	for i, done := range dones {
		if done != i+1 {
			t.Fatalf("Expected progress counts 1..%d, got %v", pageCount, dones)
		}
	}
}

func TestConvert_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Convert(ctx, testutils.BuildPDF(t, testutils.Letter, testutils.Letter), Spec{DPI: 72}, Options{
		Engine: NewMockEngine(),
	})
	if err == nil {
		t.Fatal("Expected error from a canceled context")
	}
	if out != nil {
		t.Error("Expected no output document after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in the chain, got %v", err)
	}
}

func TestConvert_GeometryIdempotence(t *testing.T) {
	input := testutils.BuildPDF(t, testutils.Letter, testutils.A4)

	run := func() []byte {
		out, err := Convert(context.Background(), input, Spec{DPI: 96}, Options{
			Engine:  NewMockEngine(),
			Workers: 1,
		})
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		return out
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Error("Expected byte-identical output across runs with a deterministic encoder")
	}
}

func TestConvert_WorkerCountsEquivalent(t *testing.T) {
	input := testutils.BuildPDF(t, testutils.Letter, testutils.A4, testutils.Letter, testutils.PageSize{W: 300, H: 300})

	geometry := func(workers int) []Page {
		out, err := Convert(context.Background(), input, Spec{DPI: 100}, Options{
			Engine:  NewMockEngine(),
			Workers: workers,
		})
		if err != nil {
			t.Fatalf("Convert with %d workers failed: %v", workers, err)
		}
		doc, err := Load(out)
		if err != nil {
			t.Fatalf("Output does not load: %v", err)
		}
		return doc.Pages()
	}

	sequential := geometry(1)
	parallel := geometry(4)
	if len(sequential) != len(parallel) {
		t.Fatalf("Page counts differ: %d vs %d", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i] != parallel[i] {
			t.Errorf("Page %d differs between worker counts: %+v vs %+v", i, sequential[i], parallel[i])
		}
	}
}

func TestConvertDocument_ReusableDocument(t *testing.T) {
	doc, err := Load(testutils.BuildPDF(t, testutils.Letter))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		out, err := ConvertDocument(context.Background(), doc, Spec{DPI: 72}, Options{Engine: NewMockEngine()})
		if err != nil {
			t.Fatalf("ConvertDocument run %d failed: %v", i, err)
		}
		if _, err := Load(out); err != nil {
			t.Fatalf("Output of run %d does not load: %v", i, err)
		}
	}
}

func BenchmarkConvert_MockEngine(b *testing.B) {
	pdf := testutils.RawPDF(612, 792, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convert(context.Background(), pdf, Spec{DPI: 72}, Options{Engine: NewMockEngine()}); err != nil {
			b.Fatalf("Convert failed: %v", err)
		}
	}
}
