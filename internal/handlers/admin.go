package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/store"
)

type relabelRequest struct {
	Label string `json:"label"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, total, err := h.records.Stats(r.Context())
	if err != nil {
		log.Printf("Stats error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	if stats == nil {
		stats = []store.CategoryCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
		"total":   total,
	})
}

func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query(), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, total, err := h.records.List(r.Context(), f)
	if err != nil {
		log.Printf("Dataset error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dataset")
		return
	}
	f = f.Normalized()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"data":      recs,
		"total":     total,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}

func (h *Handler) Relabel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req relabelRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if !h.engine.HasLabel(req.Label) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown label %q", req.Label))
		return
	}

	rec, err := h.records.Relabel(r.Context(), id, req.Label)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	if err != nil {
		log.Printf("Relabel error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to relabel prediction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": rec})
}

// Delete removes the record, then its image. A failed image removal is
// logged and does not fail the request.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.records.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	if err != nil {
		log.Printf("Delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete prediction")
		return
	}

	if err := h.images.Remove(rec.StoragePath); err != nil {
		log.Printf("[WARNING] Failed to delete image %s: %v", rec.StoragePath, err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Prediction deleted successfully",
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.records.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return
	}
	if err != nil {
		log.Printf("Download error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load prediction")
		return
	}

	rc, err := h.images.Open(rec.StoragePath)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		log.Printf("Download error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to open image")
		return
	}
	defer rc.Close()

	ext := path.Ext(rec.StoragePath)
	ct := mime.TypeByExtension(ext)
	if ct == "" {
		ct = "image/jpeg"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s%s", id, ext))
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Download error: %v", err)
	}
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query(), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.records.ListAll(r.Context(), f)
	if err != nil {
		log.Printf("Export error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export dataset")
		return
	}

	category := "all"
	if c := f.Normalized().Category; c != "" {
		category = c
	}
	filename := fmt.Sprintf("dataset_%s_%s.csv", category, time.Now().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if err := store.WriteCSV(w, recs); err != nil {
		log.Printf("Export error: %v", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Prediction not found")
		return uuid.Nil, false
	}
	return id, true
}

// parseFilter reads category, from, to, q and, when paged, page and
// page_size. A date-only "to" covers the whole day.
func parseFilter(q url.Values, paged bool) (store.Filter, error) {
	f := store.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    q.Get("q"),
	}

	var err error
	if f.From, err = parseTime(q.Get("from"), false); err != nil {
		return f, fmt.Errorf("invalid from: %w", err)
	}
	if f.To, err = parseTime(q.Get("to"), true); err != nil {
		return f, fmt.Errorf("invalid to: %w", err)
	}

	if !paged {
		return f, nil
	}
	if f.Page, err = parseBounded(q.Get("page"), 1, 1, 0); err != nil {
		return f, fmt.Errorf("invalid page: %w", err)
	}
	if f.PageSize, err = parseBounded(q.Get("page_size"), store.DefaultPageSize, 1, store.MaxPageSize); err != nil {
		return f, fmt.Errorf("invalid page_size: %w", err)
	}
	return f, nil
}

func parseTime(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.New("expected YYYY-MM-DD or RFC 3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// parseBounded parses an int in [lo, hi]; hi <= 0 means no upper bound.
func parseBounded(s string, def, lo, hi int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || (hi > 0 && n > hi) {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return n, nil
}
