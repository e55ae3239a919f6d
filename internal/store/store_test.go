package store

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	r := NewRecord("Late Blight", 0.91, ".PNG", "", now)

	if r.ID == uuid.Nil {
		t.Fatal("expected a generated id")
	}
	if want := "Late Blight/" + r.ID.String() + ".png"; r.StoragePath != want {
		t.Fatalf("StoragePath = %q, want %q", r.StoragePath, want)
	}
	if r.UploaderName != "anonymous" {
		t.Fatalf("UploaderName = %q", r.UploaderName)
	}
	if r.CreatedAt.Location() != time.UTC || !r.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v", r.CreatedAt)
	}
	if r.EffectiveLabel() != "Late Blight" {
		t.Fatalf("EffectiveLabel = %q", r.EffectiveLabel())
	}

	if other := NewRecord("Healthy", 1, "", "bob", now); other.ID == r.ID || !strings.HasSuffix(other.StoragePath, ".jpg") {
		t.Fatalf("unexpected record: %+v", other)
	}
}

func TestEffectiveLabel_Override(t *testing.T) {
	final := "Leaf Mold"
	r := Record{PredictedLabel: "Healthy", FinalLabel: &final}
	if r.EffectiveLabel() != "Leaf Mold" {
		t.Fatalf("EffectiveLabel = %q", r.EffectiveLabel())
	}
	if r.PredictedLabel != "Healthy" {
		t.Fatal("override changed predicted label")
	}
}

func TestFilterNormalized(t *testing.T) {
	tests := []struct {
		in   Filter
		want Filter
	}{
		{Filter{}, Filter{Page: 1, PageSize: DefaultPageSize}},
		{Filter{Page: 3, PageSize: 500}, Filter{Page: 3, PageSize: MaxPageSize}},
		{Filter{Category: AllCategories, Query: "  spot ", Page: 2, PageSize: 5}, Filter{Query: "spot", Page: 2, PageSize: 5}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalized(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Normalized(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if off := (Filter{Page: 3, PageSize: 20}).Offset(); off != 40 {
		t.Fatalf("Offset = %d", off)
	}
}

func TestBuildWhere(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildWhere(Filter{})
	if where != "" || args != nil {
		t.Fatalf("empty filter = %q %v", where, args)
	}

	where, args = buildWhere(Filter{Category: "Healthy", From: from, To: to, Query: "50%_off"})
	want := " where coalesce(final_label, predicted_label) = $1 and created_at >= $2 and created_at <= $3" +
		" and (id::text ilike $4 or storage_path ilike $4 or uploader_name ilike $4 or predicted_label ilike $4)"
	if where != want {
		t.Fatalf("where =\n%s\nwant\n%s", where, want)
	}
	wantArgs := []any{"Healthy", from, to, `%50\%\_off%`}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v, want %v", args, wantArgs)
	}

	where, args = buildWhere(Filter{Query: "blight"})
	if !strings.HasPrefix(where, " where (id::text ilike $1") || len(args) != 1 {
		t.Fatalf("query-only filter = %q %v", where, args)
	}
}

func TestImageStore(t *testing.T) {
	s, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	if err := s.Put("Late Blight/a.jpg", []byte("jpeg")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Open("Late Blight/a.jpg")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg" {
		t.Fatalf("data = %q", data)
	}

	if err := s.Remove("Late Blight/a.jpg"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("Late Blight/a.jpg"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := s.Open("Late Blight/a.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open after Remove = %v, want ErrNotFound", err)
	}

	for _, bad := range []string{"", "../x.jpg", "/etc/passwd", "a/../../x"} {
		if err := s.Put(bad, nil); err == nil {
			t.Errorf("Put(%q) succeeded", bad)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	final := "Leaf Mold"
	id := uuid.MustParse("3f1c8a0e-7a43-4a5e-9a4e-0c2b7c0f0d11")
	recs := []Record{{
		ID:             id,
		PredictedLabel: "Healthy",
		Confidence:     0.875,
		FinalLabel:     &final,
		UploaderName:   "anonymous",
		CreatedAt:      time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
		ImageURL:       "/img",
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "ID,Predicted Label,Confidence,Final Label,Uploader,Created At,Image URL\n" +
		id.String() + ",Healthy,0.875,Leaf Mold,anonymous,2024-03-04T05:06:07Z,/img\n"
	if buf.String() != want {
		t.Fatalf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}
