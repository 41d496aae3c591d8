package raster

import (
	"context"
	"testing"

	"github.com/KyleBrandon/flatbed/tests/testutils"
)

func TestEngineManager_RegisterEngine(t *testing.T) {
	manager := NewEngineManager()
	mock := NewMockEngine()

	manager.RegisterEngine("test_mock", mock)

	engine, err := manager.GetEngine("test_mock")
	if err != nil {
		t.Fatalf("Failed to get registered engine: %v", err)
	}
	if engine != mock {
		t.Error("Retrieved engine is not the same as registered engine")
	}
}

func TestEngineManager_SetDefaultEngine(t *testing.T) {
	manager := NewEngineManager()
	mock := NewMockEngine()

	manager.RegisterEngine("test_mock", mock)
	if err := manager.SetDefaultEngine("test_mock"); err != nil {
		t.Fatalf("Failed to set default engine: %v", err)
	}

	engine, err := manager.GetEngine("")
	if err != nil {
		t.Fatalf("Failed to get default engine: %v", err)
	}
	if engine != mock {
		t.Error("Default engine is not the expected engine")
	}
}

func TestEngineManager_SetDefaultEngine_NotFound(t *testing.T) {
	manager := NewEngineManager()

	if err := manager.SetDefaultEngine("nonexistent"); err == nil {
		t.Error("Expected error when setting nonexistent engine as default")
	}
}

func TestEngineManager_GetEngine_NotFound(t *testing.T) {
	manager := NewEngineManager()

	if _, err := manager.GetEngine("nonexistent"); err == nil {
		t.Error("Expected error when getting nonexistent engine")
	}
}

func TestEngineManager_GetEngine_NoDefault(t *testing.T) {
	manager := NewEngineManager()
	manager.RegisterEngine("mock", NewMockEngine())

	if _, err := manager.GetEngine(""); err == nil {
		t.Error("Expected error when no default engine is set")
	}
}

func TestEngineManager_ListEngines(t *testing.T) {
	manager := NewEngineManager()
	manager.RegisterEngine("mock1", NewMockEngine())
	manager.RegisterEngine("mock2", NewMockEngine())

	engines := manager.ListEngines()

	if len(engines) != 2 {
		t.Errorf("Expected 2 engines, got %d", len(engines))
	}
	if _, exists := engines["mock1"]; !exists {
		t.Error("Expected 'mock1' engine in list")
	}
	if _, exists := engines["mock2"]; !exists {
		t.Error("Expected 'mock2' engine in list")
	}
}

func TestNewDefaultManager(t *testing.T) {
	manager := NewDefaultManager()

	engine, err := manager.GetEngine("")
	if err != nil {
		t.Fatalf("Failed to get default engine: %v", err)
	}
	if engine.Info().Name != EngineMuPDF {
		t.Errorf("Expected default engine %q, got %q", EngineMuPDF, engine.Info().Name)
	}
}

func TestMockEngine_Render(t *testing.T) {
	doc, err := Load(testutils.BuildPDF(t, testutils.Letter))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	engine := NewMockEngine()
	session, err := engine.Open(doc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	dims := PixelDimensions{Width: 100, Height: 200}
	img, err := session.Render(context.Background(), doc.Pages()[0], dims)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 200 {
		t.Errorf("Expected 100x200 buffer, got %dx%d", b.Dx(), b.Dy())
	}
	if engine.Renders() != 1 {
		t.Errorf("Expected 1 render, got %d", engine.Renders())
	}
}

func TestMockEngine_FailPage(t *testing.T) {
	doc, err := Load(testutils.BuildPDF(t, testutils.Letter, testutils.Letter))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	engine := NewMockEngine()
	engine.FailPage = 1
	session, err := engine.Open(doc)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	dims := PixelDimensions{Width: 10, Height: 10}
	if _, err := session.Render(context.Background(), doc.Pages()[0], dims); err != nil {
		t.Errorf("Page 0 should render, got %v", err)
	}
	if _, err := session.Render(context.Background(), doc.Pages()[1], dims); err == nil {
		t.Error("Page 1 should fail")
	}
}

func TestMockEngine_Info(t *testing.T) {
	info := NewMockEngine().Info()

	if info.Name != EngineMock {
		t.Errorf("Expected name %q, got %q", EngineMock, info.Name)
	}
	if !info.Enabled {
		t.Error("Expected mock engine to always be enabled")
	}
}
