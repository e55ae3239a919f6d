package store

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// AllCategories is the category filter value meaning "no filter".
const AllCategories = "All Categories"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Record is one persisted prediction. PredictedLabel is the model's output
// and never changes; FinalLabel holds a human override.
type Record struct {
	ID             uuid.UUID `json:"id"`
	StoragePath    string    `json:"storage_path"`
	ImageURL       string    `json:"image_url"`
	PredictedLabel string    `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	FinalLabel     *string   `json:"final_label"`
	UploaderName   string    `json:"uploader_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewRecord builds a record with a fresh id. ext is the image file extension
// without the dot; "jpg" is used when empty.
func NewRecord(label string, confidence float64, ext, uploader string, now time.Time) Record {
	id := uuid.New()
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "jpg"
	}
	if uploader == "" {
		uploader = "anonymous"
	}
	now = now.UTC()
	return Record{
		ID:             id,
		StoragePath:    path.Join(label, id.String()+"."+ext),
		PredictedLabel: label,
		Confidence:     confidence,
		UploaderName:   uploader,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r Record) EffectiveLabel() string {
	if r.FinalLabel != nil && *r.FinalLabel != "" {
		return *r.FinalLabel
	}
	return r.PredictedLabel
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Filter selects records. Zero From/To are unbounded.
type Filter struct {
	Category string
	From     time.Time
	To       time.Time
	Query    string
	Page     int
	PageSize int
}

// Normalized clamps paging to valid values.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Category == AllCategories {
		f.Category = ""
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
