package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/model"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/store"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/verdict"
)

// predictionResponse is the verdict envelope, plus the stored record id and
// upload filename when there is one.
type predictionResponse struct {
	*verdict.Verdict
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Predict runs the model on a raw, already preprocessed input tensor.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req model.PredictionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	expectedSize := h.model.Info().InputSize()
	if len(req.Image) != expectedSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Expected %d values, got %d", expectedSize, len(req.Image)))
		return
	}

	v, ok := h.infer(w, req.Image)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, predictionResponse{Verdict: v})
}

// Classify applies the decision engine to a caller-supplied probability vector.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req model.ClassifyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	v, err := h.engine.Classify(req.Probabilities)
	var shape *verdict.ShapeMismatchError
	if errors.As(err, &shape) {
		writeError(w, http.StatusBadRequest, shape.Error())
		return
	}
	if err != nil {
		log.Printf("Classify error: %v", err)
		writeError(w, http.StatusInternalServerError, "Classification failed")
		return
	}
	writeJSON(w, http.StatusOK, predictionResponse{Verdict: v})
}

func (h *Handler) PredictFromImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := formImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided. Use 'file' as the form field name")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	log.Printf("Received file: %s, size: %d bytes", header.Filename, len(data))

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image format. Supported: JPEG, PNG")
		return
	}

	v, ok := h.infer(w, model.Preprocess(img, h.model.Info()))
	if !ok {
		return
	}

	resp := predictionResponse{Verdict: v, Filename: header.Filename}
	if !v.IsUnidentified && h.Persisting() {
		ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
		if ext == "" {
			ext = format
		}
		id, err := h.save(r.Context(), v, data, ext, r.FormValue("uploader_name"))
		if err != nil {
			log.Printf("[WARNING] Failed to save prediction: %v", err)
		} else {
			resp.ID = id
			log.Printf("Saved prediction %s - %s", id, v.PredictedClass)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// infer runs the model and the engine. On failure it writes the error
// response and returns false.
func (h *Handler) infer(w http.ResponseWriter, input []float32) (*verdict.Verdict, bool) {
	probs, err := h.model.Probabilities(input)
	if err != nil {
		log.Printf("Prediction error: %v", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return nil, false
	}

	v, err := h.engine.Classify(probs)
	if err != nil {
		// The model and the engine disagree on the label set.
		log.Printf("Prediction error: %v", err)
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return nil, false
	}
	return v, true
}

func (h *Handler) save(ctx context.Context, v *verdict.Verdict, data []byte, ext, uploader string) (string, error) {
	rec := store.NewRecord(v.PredictedClass, v.Confidence, ext, uploader, time.Now())
	rec.ImageURL = downloadURL(rec.ID.String())

	if err := h.images.Put(rec.StoragePath, data); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	if err := h.records.Insert(ctx, rec); err != nil {
		if rmErr := h.images.Remove(rec.StoragePath); rmErr != nil {
			log.Printf("[WARNING] Failed to remove orphan image %s: %v", rec.StoragePath, rmErr)
		}
		return "", fmt.Errorf("insert record: %w", err)
	}
	return rec.ID.String(), nil
}

// decodeJSON reads a body of at most maxUpload bytes into v. On failure it
// writes the error response and returns false.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON")
	return false
}

func formImage(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return r.FormFile("image")
	}
	return file, header, err
}

func downloadURL(id string) string {
	return "/api/admin/dataset/" + id + "/download"
}
