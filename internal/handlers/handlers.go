package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/model"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/store"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/verdict"
)

const defaultMaxUpload = 10 << 20

// RecordStore persists prediction records. *store.RecordRepo implements it.
type RecordStore interface {
	Insert(ctx context.Context, rec store.Record) error
	Get(ctx context.Context, id uuid.UUID) (*store.Record, error)
	List(ctx context.Context, f store.Filter) ([]store.Record, int, error)
	ListAll(ctx context.Context, f store.Filter) ([]store.Record, error)
	Relabel(ctx context.Context, id uuid.UUID, label string) (*store.Record, error)
	Delete(ctx context.Context, id uuid.UUID) (*store.Record, error)
	Stats(ctx context.Context) ([]store.CategoryCount, int, error)
}

// ImageStore holds uploaded image bytes. *store.ImageStore implements it.
type ImageStore interface {
	Put(storagePath string, data []byte) error
	Open(storagePath string) (io.ReadCloser, error)
	Remove(storagePath string) error
}

// Options configures optional persistence. With nil Records, predictions
// are not stored and admin routes are not registered.
type Options struct {
	Records        RecordStore
	Images         ImageStore
	MaxUploadBytes int64
}

type Handler struct {
	model     model.Predictor
	engine    *verdict.Engine
	records   RecordStore
	images    ImageStore
	maxUpload int64
}

func NewHandler(predictor model.Predictor, engine *verdict.Engine, opts Options) *Handler {
	h := &Handler{
		model:     predictor,
		engine:    engine,
		records:   opts.Records,
		images:    opts.Images,
		maxUpload: opts.MaxUploadBytes,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}
	if h.records == nil || h.images == nil {
		h.records, h.images = nil, nil
	}
	return h
}

// Persisting reports whether predictions are stored.
func (h *Handler) Persisting() bool {
	return h.records != nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /classes", h.Classes)
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /predict/image", h.PredictFromImage)
	mux.HandleFunc("POST /classify", h.Classify)

	if !h.Persisting() {
		return
	}
	mux.HandleFunc("GET /api/admin/stats", h.Stats)
	mux.HandleFunc("GET /api/admin/dataset", h.Dataset)
	mux.HandleFunc("PATCH /api/admin/dataset/{id}/label", h.Relabel)
	mux.HandleFunc("DELETE /api/admin/dataset/{id}", h.Delete)
	mux.HandleFunc("GET /api/admin/dataset/{id}/download", h.Download)
	mux.HandleFunc("GET /api/admin/dataset/export/csv", h.ExportCSV)
}

// CORS allows any origin, answering preflight requests directly.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Fito - Tomato Leaf Disease Detection API",
		"status":  "running",
		"version": "1.0.0",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": h.model != nil,
	})
}

func (h *Handler) Classes(w http.ResponseWriter, r *http.Request) {
	labels := h.engine.Labels()
	writeJSON(w, http.StatusOK, map[string]any{
		"classes":       labels,
		"total_classes": len(labels),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
