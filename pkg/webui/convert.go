package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KyleBrandon/flatbed/pkg/dto"
	"github.com/KyleBrandon/flatbed/pkg/raster"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	spec := raster.Spec{DPI: raster.DefaultDPI}
	if v := r.FormValue("dpi"); v != "" {
		dpi, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid dpi: "+err.Error())
			return
		}
		spec.DPI = dpi
	}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quality := 0
	if v := r.FormValue("quality"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid quality: "+err.Error())
			return
		}
		quality = q
	}

	encoder, err := raster.EncoderFor(r.FormValue("format"), quality)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image settings: "+err.Error())
		return
	}

	engine, err := s.engines.GetEngine(r.FormValue("engine"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "render engine error: "+err.Error())
		return
	}

	doc, err := raster.Load(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to load PDF: "+err.Error())
		return
	}

	out, err := raster.ConvertDocument(r.Context(), doc, spec, raster.Options{
		Engine:  engine,
		Encoder: encoder,
		OnProgress: func(done, total int) {
			slog.Debug("page rasterized", "file", filename, "done", done, "total", total)
		},
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("conversion failed", "file", filename, "error", err)
		}
		writeError(w, status, "conversion failed: "+err.Error())
		return
	}

	slog.Info("rasterized upload",
		"file", filename,
		"pages", doc.PageCount(),
		"dpi", spec.DPI,
		"format", encoder.Format(),
		"bytes", len(out))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.Write(out)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	dpi := raster.DefaultDPI
	if v := r.FormValue("dpi"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid dpi: "+err.Error())
			return
		}
		dpi = parsed
	}
	if err := (raster.Spec{DPI: dpi}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := raster.Load(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to load PDF: "+err.Error())
		return
	}

	info := dto.DocumentInfo{
		PageCount: doc.PageCount(),
		DPI:       dpi,
		Pages:     make([]dto.PageInfo, 0, doc.PageCount()),
	}
	for _, page := range doc.Pages() {
		dims := page.Pixels(dpi)
		info.Pages = append(info.Pages, dto.PageInfo{
			Index:    page.Index,
			WidthPt:  page.WidthPt,
			HeightPt: page.HeightPt,
			Rotation: page.Rotation,
			WidthPx:  dims.Width,
			HeightPx: dims.Height,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		slog.Error("failed to encode document info", "error", err)
	}
}

// readUpload pulls the uploaded PDF out of the multipart form. It
// writes the error response itself and reports success via ok.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d byte limit", maxErr.Limit))
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return nil, "", false
	}

	return data, header.Filename, true
}

// statusFor maps pipeline failures onto HTTP statuses: problems with
// the request or the uploaded document are 4xx, everything downstream
// of a valid document is 5xx.
func statusFor(err error) int {
	var configErr *raster.ConfigError
	var loadErr *raster.LoadError
	var geomErr *raster.GeometryError
	switch {
	case errors.As(err, &configErr), errors.As(err, &loadErr), errors.As(err, &geomErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func downloadName(uploadName string) string {
	base := strings.TrimSuffix(filepath.Base(uploadName), filepath.Ext(uploadName))
	if base == "" || base == "." {
		base = "document"
	}
	return base + "_rasterized.pdf"
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
