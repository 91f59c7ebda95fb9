package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config configures the chimerad HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":5001".
	Addr string
	// DataDir holds the snapshot database and generated image assets.
	DataDir string
}

// Server exposes the generation studio and snapshot store over HTTP.
type Server struct {
	cfg       Config
	log       *zap.Logger
	studio    Studio
	snaps     *SnapshotStore
	imagesDir string
	metrics   *metrics
	httpSrv   *http.Server
}

// New creates a server. The images directory is created under DataDir.
func New(cfg Config, studio Studio, snaps *SnapshotStore, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	imagesDir := filepath.Join(cfg.DataDir, "generated")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &Server{
		cfg:       cfg,
		log:       log,
		studio:    studio,
		snaps:     snaps,
		imagesDir: imagesDir,
		metrics:   newMetrics(),
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.observe)

	r.Get("/api/random-prompt", s.handleRandomPrompt)
	r.Post("/api/generate", s.handleGenerate)
	r.Post("/api/breed", s.handleBreed)
	r.Post("/api/save-state", s.handleSaveState)
	r.Get("/api/load-state", s.handleLoadState)
	r.Get("/static/generated/{file}", s.handleImage)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("chimerad listening", zap.String("addr", s.cfg.Addr))
		errc <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// observe logs each request and feeds the request counter.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.metrics.requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// --- Handlers ---

func (s *Server) handleRandomPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := s.studio.RandomPrompt(r.Context())
	if err != nil {
		s.metrics.generationFailures.WithLabelValues("prompt").Inc()
		s.respondError(w, http.StatusBadGateway, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if req.Prompt == "" {
		req.Prompt = "a cute fantasy animal"
	}

	start := time.Now()
	name, png, err := s.studio.Conjure(r.Context(), req.Prompt)
	s.metrics.generationSeconds.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.generationFailures.WithLabelValues("generate").Inc()
		s.respondError(w, http.StatusBadGateway, err)
		return
	}
	if name == "" {
		name = "Unknown Creature"
	}

	id, err := s.saveImage(png)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"id":        id,
		"name":      name,
		"image_url": "/static/generated/" + id + ".png",
	})
}

func (s *Server) handleBreed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parent1ID   string `json:"parent1_id"`
		Parent2ID   string `json:"parent2_id"`
		Parent1Name string `json:"parent1_name"`
		Parent2Name string `json:"parent2_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}
	if req.Parent1Name == "" {
		req.Parent1Name = "creature 1"
	}
	if req.Parent2Name == "" {
		req.Parent2Name = "creature 2"
	}

	img1, err1 := s.readImage(req.Parent1ID)
	img2, err2 := s.readImage(req.Parent2ID)
	if err1 != nil || err2 != nil {
		s.respondError(w, http.StatusNotFound, errors.New("parent images not found"))
		return
	}

	start := time.Now()
	name, png, err := s.studio.Crossbreed(r.Context(), req.Parent1Name, req.Parent2Name, img1, img2)
	s.metrics.generationSeconds.WithLabelValues("breed").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.generationFailures.WithLabelValues("breed").Inc()
		s.respondError(w, http.StatusBadGateway, err)
		return
	}
	if name == "" {
		name = stitchNames(req.Parent1Name, req.Parent2Name)
	}

	id, err := s.saveImage(png)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"name":      name,
		"image_url": "/static/generated/" + id + ".png",
		"parents":   []string{req.Parent1ID, req.Parent2ID},
	})
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("read state: %w", err))
		return
	}
	if !json.Valid(body) {
		s.respondError(w, http.StatusBadRequest, errors.New("state is not valid JSON"))
		return
	}
	if err := s.snaps.Save(r.Context(), body); err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLoadState(w http.ResponseWriter, r *http.Request) {
	body, err := s.snaps.Load(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if body == nil {
		body = []byte(`{"animals":[],"familyLines":[]}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	// filepath.Base strips any traversal from the route parameter.
	file := filepath.Base(chi.URLParam(r, "file"))
	http.ServeFile(w, r, filepath.Join(s.imagesDir, file))
}

// --- Helpers ---

func (s *Server) saveImage(png []byte) (string, error) {
	id := uuid.NewString()[:8]
	path := filepath.Join(s.imagesDir, id+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return id, nil
}

func (s *Server) readImage(id string) ([]byte, error) {
	if id == "" {
		return nil, errors.New("missing parent id")
	}
	return os.ReadFile(filepath.Join(s.imagesDir, filepath.Base(id)+".png"))
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, err error) {
	s.log.Warn("request failed", zap.Int("status", code), zap.Error(err))
	s.respondJSON(w, code, map[string]string{"error": err.Error()})
}

// stitchNames builds the fallback offspring name from the head of one
// parent's name and the tail of the other's.
func stitchNames(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	head := ra
	if len(head) > 3 {
		head = head[:3]
	}
	tail := rb
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	return string(head) + string(tail)
}
