package raster

import "fmt"

// The conversion pipeline fails as a whole: any error below aborts the
// entire operation and no output document is produced. Page-scoped
// errors carry the 0-based index of the offending page.

// ConfigError reports conversion parameters that failed validation.
// It is raised before any document I/O takes place.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// LoadError reports input bytes that could not be opened as a usable
// document, including encrypted documents.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load document: %v", e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// GeometryError reports a page whose physical size could not be
// determined.
type GeometryError struct {
	Page int
	Err  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("resolve geometry of page %d: %v", e.Page, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// RenderError reports a page the engine could not rasterize.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// EncodeError reports a page whose pixel buffer could not be
// compressed.
type EncodeError struct {
	Page int
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode page %d: %v", e.Page, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// WriteError reports a failure while assembling or persisting the
// output document.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write output: %v", e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }
