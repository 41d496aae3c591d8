// Package webui provides the in-browser rasterization surface. Uploads
// are converted in memory and streamed back as a download; no document
// data is kept after the response is written.
package webui

import (
	_ "embed"
	"net/http"

	"github.com/KyleBrandon/flatbed/pkg/raster"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadMB bounds the accepted upload size.
const DefaultMaxUploadMB = 64

//go:embed index.html
var indexHTML []byte

type Server struct {
	engines        *raster.EngineManager
	maxUploadBytes int64
}

func NewServer(engines *raster.EngineManager, maxUploadMB int64) *Server {
	if engines == nil {
		engines = raster.NewDefaultManager()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}

	return &Server{
		engines:        engines,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/convert", s.handleConvert)
	r.Post("/info", s.handleInfo)
	r.Get("/healthz", s.handleHealth)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
