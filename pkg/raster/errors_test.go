package raster

import (
	"errors"
	"strings"
	"testing"
)

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dpi     int
		wantErr bool
	}{
		{"default dpi", 72, false},
		{"minimum dpi", 1, false},
		{"high dpi", 600, false},
		{"zero dpi", 0, true},
		{"negative dpi", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Spec{DPI: tt.dpi}.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Expected no error for dpi %d, got %v", tt.dpi, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error for dpi %d, got nil", tt.dpi)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Expected ConfigError, got %T", err)
			}
			if !strings.Contains(err.Error(), "dpi") {
				t.Errorf("Expected message to name the dpi parameter, got %q", err.Error())
			}
		})
	}
}

func TestPageScopedErrors_ReportIndex(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"geometry", &GeometryError{Page: 0, Err: cause}, "page 0"},
		{"render", &RenderError{Page: 1, Err: cause}, "page 1"},
		{"encode", &EncodeError{Page: 4, Err: cause}, "page 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Expected %q in message, got %q", tt.want, tt.err.Error())
			}
			if !errors.Is(tt.err, cause) {
				t.Errorf("Expected error to unwrap to its cause")
			}
		})
	}
}

func TestDocumentScopedErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
	}{
		{"load", &LoadError{Err: cause}},
		{"write", &WriteError{Err: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Errorf("Expected error to unwrap to its cause")
			}
			if tt.err.Error() == "" {
				t.Error("Expected a non-empty message")
			}
		})
	}
}
