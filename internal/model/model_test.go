package model

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	raw := []byte(`{
		"input_shape": [1, 224, 224, 3],
		"output_shape": [1, 2],
		"classes": ["Healthy", "Late Blight"],
		"image_size": 224
	}`)

	m, err := ParseMetadata(raw)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Layout != LayoutNHWC || m.InputName != "input" || m.OutputName != "output" {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if got := m.InputSize(); got != 224*224*3 {
		t.Fatalf("InputSize = %d", got)
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := map[string]string{
		"bad json":   `{`,
		"no classes": `{"input_shape":[1,3,4,4],"image_size":4}`,
		"bad layout": `{"classes":["A"],"layout":"HWC"}`,
		"shape/size": `{"classes":["A"],"input_shape":[1,3,8,8],"image_size":4}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseMetadata([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	if err := os.WriteFile(path, []byte(`{"classes":["A","B"],"image_size":4,"layout":"NCHW","input_shape":[1,3,4,4]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if m.Layout != LayoutNCHW || len(m.Classes) != 2 {
		t.Fatalf("unexpected metadata: %+v", m)
	}

	if _, err := LoadMetadata(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1.0/255+1e-6
}

func TestPreprocess_Layouts(t *testing.T) {
	img := solid(16, 10, color.RGBA{R: 255, G: 51, B: 0, A: 255})

	nhwc := Preprocess(img, Metadata{ImageSize: 4, Layout: LayoutNHWC})
	if len(nhwc) != 3*4*4 {
		t.Fatalf("len = %d", len(nhwc))
	}
	for p := 0; p < 16; p++ {
		if !near(nhwc[3*p], 1) || !near(nhwc[3*p+1], 0.2) || !near(nhwc[3*p+2], 0) {
			t.Fatalf("NHWC pixel %d = %v", p, nhwc[3*p:3*p+3])
		}
	}

	nchw := Preprocess(img, Metadata{ImageSize: 4, Layout: LayoutNCHW})
	for p := 0; p < 16; p++ {
		if !near(nchw[p], 1) || !near(nchw[16+p], 0.2) || !near(nchw[32+p], 0) {
			t.Fatalf("NCHW pixel %d = %v %v %v", p, nchw[p], nchw[16+p], nchw[32+p])
		}
	}
}

func TestPreprocess_DropsAlphaWithoutDarkening(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 3, 12, 13))
	for y := 3; y < 13; y++ {
		for x := 2; x < 12; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 204, G: 102, B: 51, A: 0x40})
		}
	}

	data := Preprocess(img, Metadata{ImageSize: 4, Layout: LayoutNHWC})
	for p := 0; p < 16; p++ {
		if !near(data[3*p], 0.8) || !near(data[3*p+1], 0.4) || !near(data[3*p+2], 0.2) {
			t.Fatalf("pixel %d = %v, want colour kept at full strength", p, data[3*p:3*p+3])
		}
	}
}
