package web

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/bbqreviews/internal/digest"
	"github.com/vbonduro/bbqreviews/internal/domain"
	"github.com/vbonduro/bbqreviews/internal/service"
)

type Server struct {
	reviews    *service.ReviewStore
	summarizer digest.Summarizer
	templates  fs.FS
	router     chi.Router
	tmplFuncs  template.FuncMap
	logger     *slog.Logger
}

// NewServer builds the HTTP handler. summarizer may be nil, which disables
// the digest endpoint.
func NewServer(reviews *service.ReviewStore, summarizer digest.Summarizer, tmpl fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		reviews:    reviews,
		summarizer: summarizer,
		templates:  tmpl,
		logger:     logger,
		tmplFuncs: template.FuncMap{
			"stars":       stars,
			"isoTime":     isoTime,
			"displayTime": displayTime,
			"ratings":     ratingChoices,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/reviews", s.handleListReviews)
	r.Post("/reviews", s.handleCreateReview)
	r.Get("/digest", s.handleDigest)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/reviews", s.handleAPIListReviews)
		r.Post("/reviews", s.handleAPICreateReview)
	})

	// The service worker must be served from the root to control the whole
	// origin.
	r.Get("/service-worker.js", s.serveAsset("static/service-worker.js", "text/javascript; charset=utf-8"))
	r.Get("/manifest.webmanifest", s.serveAsset("static/manifest.webmanifest", "application/manifest+json"))
	if static, err := fs.Sub(s.templates, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	}

	s.router = r
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns an *http.Server for addr; the caller owns its lifecycle.
func (s *Server) Handler(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses file and executes the template it defines.
func (s *Server) renderPartial(w http.ResponseWriter, status int, file, name string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, name, data)
}

func (s *Server) serveAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(s.templates, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(data); err != nil {
			s.logger.Error("write asset failed", "asset", name, "error", err)
		}
	}
}

// stars renders a rating as repeated star glyphs.
func stars(rating int) string {
	if rating < 0 {
		return ""
	}
	return strings.Repeat("★", rating)
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// displayTime is the server-side fallback; the client script replaces it with
// the browser's locale format.
func displayTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006, 3:04 PM UTC")
}

// ratingChoices lists ratings for the form select, best first.
func ratingChoices() []int {
	out := make([]int, 0, domain.MaxRating-domain.MinRating+1)
	for i := domain.MaxRating; i >= domain.MinRating; i-- {
		out = append(out, i)
	}
	return out
}
