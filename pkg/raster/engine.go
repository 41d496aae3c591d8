package raster

import (
	"context"
	"fmt"
	"image"
)

// Names of the built-in render engines.
const (
	EngineMuPDF = "mupdf"
	EngineMock  = "mock"
)

// EngineInfo describes a render engine's capabilities.
type EngineInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// Engine is the rendering capability behind the pipeline. It turns
// page content into pixels; everything else about the document stays
// opaque to it.
type Engine interface {
	// Info describes the engine.
	Info() EngineInfo

	// Open prepares a render session for one document. Sessions are
	// not safe for concurrent use; open one per goroutine.
	Open(doc *Document) (Session, error)
}

// Session renders pages of a single document.
type Session interface {
	// Render rasterizes one page into a buffer with exactly the
	// requested pixel dimensions, top-left origin, in the media box
	// orientation of the page.
	Render(ctx context.Context, page Page, dims PixelDimensions) (image.Image, error)

	// Close releases the session's resources.
	Close() error
}

// EngineManager tracks the available render engines. Register engines
// during startup; lookups after that are read-only.
type EngineManager struct {
	engines       map[string]Engine
	defaultEngine string
}

// NewEngineManager creates an empty manager.
func NewEngineManager() *EngineManager {
	return &EngineManager{engines: make(map[string]Engine)}
}

// NewDefaultManager returns a manager with the built-in MuPDF engine
// registered and selected as default.
func NewDefaultManager() *EngineManager {
	m := NewEngineManager()
	m.RegisterEngine(EngineMuPDF, NewFitzEngine())
	if err := m.SetDefaultEngine(EngineMuPDF); err != nil {
		panic(err)
	}
	return m
}

// RegisterEngine adds an engine under the given name, replacing any
// previous registration.
func (m *EngineManager) RegisterEngine(name string, engine Engine) {
	m.engines[name] = engine
}

// SetDefaultEngine selects the engine returned for an empty name.
func (m *EngineManager) SetDefaultEngine(name string) error {
	if _, exists := m.engines[name]; !exists {
		return fmt.Errorf("render engine '%s' not registered", name)
	}
	m.defaultEngine = name
	return nil
}

// GetEngine returns the named engine, or the default engine when name
// is empty.
func (m *EngineManager) GetEngine(name string) (Engine, error) {
	if name == "" {
		name = m.defaultEngine
		if name == "" {
			return nil, fmt.Errorf("no default render engine set")
		}
	}
	engine, exists := m.engines[name]
	if !exists {
		return nil, fmt.Errorf("render engine '%s' not registered", name)
	}
	return engine, nil
}

// ListEngines returns the info of every registered engine keyed by
// registration name.
func (m *EngineManager) ListEngines() map[string]EngineInfo {
	infos := make(map[string]EngineInfo, len(m.engines))
	for name, engine := range m.engines {
		infos[name] = engine.Info()
	}
	return infos
}
