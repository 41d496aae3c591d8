package raster

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Assemble serializes the ordered output pages into a single PDF
// written to w. The slice must cover page indexes 0..n-1 with no gaps;
// a hole means an upstream failure policy was violated.
//
// Each output page carries exactly one image object, stretched from
// the page origin across the full media box by its content stream.
// Media box extents are written with full float64 round-trip
// precision so the output geometry matches the source bit for bit.
func Assemble(w io.Writer, pages []OutputPage) error {
	if err := checkSequence(pages); err != nil {
		return &WriteError{Err: err}
	}

	d := &docWriter{w: w, offsets: make([]int64, objCount(len(pages))+1)}
	d.writeHeader()
	d.writeCatalog()
	d.writePageTree(pages)
	for i := range pages {
		d.writePage(pages[i])
	}
	d.writeTrailer()
	if d.err != nil {
		return &WriteError{Err: d.err}
	}
	return nil
}

func checkSequence(pages []OutputPage) error {
	if len(pages) == 0 {
		return errors.New("no pages to assemble")
	}
	for i := range pages {
		if pages[i].Index != i {
			return fmt.Errorf("page sequence has a gap at slot %d (holds index %d)", i, pages[i].Index)
		}
		img := pages[i].Image
		if len(img.Data) == 0 {
			return fmt.Errorf("page %d has an empty image stream", i)
		}
		if img.Filter != filterDCT && img.Filter != filterFlate {
			return fmt.Errorf("page %d has unsupported stream filter %q", i, img.Filter)
		}
		if img.Width < 1 || img.Height < 1 {
			return fmt.Errorf("page %d has degenerate image dimensions %dx%d", i, img.Width, img.Height)
		}
	}
	return nil
}

// Object layout: 1 catalog, 2 page tree, then three objects per page
// in index order (page dict, content stream, image stream).

func objCount(pages int) int { return 2 + 3*pages }

func pageObjID(index int) int { return 3 + 3*index }

// docWriter emits PDF objects while tracking the byte offset of each
// for the cross-reference table. The first error sticks; later writes
// become no-ops.
type docWriter struct {
	w       io.Writer
	offset  int64
	offsets []int64
	err     error
}

func (d *docWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	n, err := fmt.Fprintf(d.w, format, args...)
	d.offset += int64(n)
	d.err = err
}

func (d *docWriter) writeRaw(b []byte) {
	if d.err != nil {
		return
	}
	n, err := d.w.Write(b)
	d.offset += int64(n)
	d.err = err
}

func (d *docWriter) beginObject(id int) {
	if d.err == nil {
		d.offsets[id] = d.offset
	}
	d.printf("%d 0 obj\n", id)
}

func (d *docWriter) writeHeader() {
	d.writeRaw([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
}

func (d *docWriter) writeCatalog() {
	d.beginObject(1)
	d.printf("<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
}

func (d *docWriter) writePageTree(pages []OutputPage) {
	var kids strings.Builder
	for i := range pages {
		fmt.Fprintf(&kids, "%d 0 R ", pageObjID(i))
	}
	d.beginObject(2)
	d.printf("<< /Type /Pages /Kids [ %s] /Count %d >>\nendobj\n", kids.String(), len(pages))
}

func (d *docWriter) writePage(p OutputPage) {
	pageID := pageObjID(p.Index)
	contentID := pageID + 1
	imageID := pageID + 2
	wpt := fmtPt(p.WidthPt)
	hpt := fmtPt(p.HeightPt)

	d.beginObject(pageID)
	d.printf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Resources << /XObject << /Im0 %d 0 R >> >> /Contents %d 0 R >>\nendobj\n",
		wpt, hpt, imageID, contentID)

	content := fmt.Sprintf("q\n%s 0 0 %s 0 0 cm\n/Im0 Do\nQ", wpt, hpt)
	d.beginObject(contentID)
	d.printf("<< /Length %d >>\nstream\n", len(content))
	d.writeRaw([]byte(content))
	d.writeRaw([]byte("\nendstream\nendobj\n"))

	img := p.Image
	d.beginObject(imageID)
	d.printf("<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent %d /Filter /%s /Length %d >>\nstream\n",
		img.Width, img.Height, img.ColorSpace, img.BitsPerComponent, img.Filter, len(img.Data))
	d.writeRaw(img.Data)
	d.writeRaw([]byte("\nendstream\nendobj\n"))
}

func (d *docWriter) writeTrailer() {
	xref := d.offset
	size := len(d.offsets)
	d.printf("xref\n0 %d\n", size)
	d.printf("0000000000 65535 f \n")
	for id := 1; id < size; id++ {
		d.printf("%010d 00000 n \n", d.offsets[id])
	}
	d.printf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xref)
}

// fmtPt renders a point value with full float64 round-trip precision.
// PDF numbers must not use exponent notation, which 'f' never emits.
func fmtPt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
