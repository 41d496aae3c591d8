// Package testutils provides fixture builders and helpers shared by
// the package tests.
package testutils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/signintech/gopdf"
)

// PageSize describes one fixture page in points.
type PageSize struct {
	W float64
	H float64
}

// Common fixture page sizes.
var (
	Letter = PageSize{W: 612, H: 792}
	A4     = PageSize{W: 595.28, H: 841.89}
)

// BuildPDF returns an in-memory PDF with one blank page per size.
func BuildPDF(t *testing.T, sizes ...PageSize) []byte {
	t.Helper()

	if len(sizes) == 0 {
		t.Fatal("BuildPDF requires at least one page size")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: gopdf.Rect{W: sizes[0].W, H: sizes[0].H}})
	for _, size := range sizes {
		rect := gopdf.Rect{W: size.W, H: size.H}
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &rect})
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		t.Fatalf("Failed to build fixture PDF: %v", err)
	}
	return buf.Bytes()
}

// RawPDF returns a hand-assembled single-page PDF with the given media
// box extents and rotation. It bypasses any writer library so tests
// can produce geometry (rotated pages, degenerate boxes) that writers
// refuse to emit.
func RawPDF(width, height float64, rotate int) []byte {
	return RawPDFBox(0, 0, width, height, rotate)
}

// RawPDFBox is RawPDF with explicit media box corners.
func RawPDFBox(llx, lly, urx, ury float64, rotate int) []byte {
	rot := ""
	if rotate != 0 {
		rot = fmt.Sprintf(" /Rotate %d", rotate)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [ 3 0 R ] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [%s %s %s %s] /Resources << >>%s >>",
			num(llx), num(lly), num(urx), num(ury), rot),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs)+1)
	for i, obj := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFixture writes data into dir under name and returns the full
// path.
func WriteFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", name, err)
	}
	return path
}

// RequireIntegration skips the test unless integration testing is
// enabled. Tests behind this gate need the MuPDF runtime.
func RequireIntegration(t *testing.T) {
	t.Helper()

	if os.Getenv("FLATBED_INTEGRATION") == "" {
		t.Skip("Skipping integration test; set FLATBED_INTEGRATION=1 to run")
	}
}

// AssertMCPResult verifies that an MCP result is successful.
func AssertMCPResult(t *testing.T, result *mcp.CallToolResult, operation string) {
	t.Helper()

	if result == nil {
		t.Fatalf("%s should return a result", operation)
	}
	if result.IsError {
		t.Fatalf("%s should not return error: %v", operation, result.Content[0])
	}
	if len(result.Content) == 0 {
		t.Fatalf("%s should return content", operation)
	}
}

// AssertMCPError verifies that an MCP result is an error.
func AssertMCPError(t *testing.T, result *mcp.CallToolResult, operation string) {
	t.Helper()

	if result == nil {
		t.Fatalf("%s should return a result", operation)
	}
	if !result.IsError {
		t.Fatalf("%s should return error but got success", operation)
	}
}

// TextContent extracts the text of the first content item of an MCP
// result.
func TextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("Result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}
