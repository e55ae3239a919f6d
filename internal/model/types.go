package model

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	LayoutNHWC = "NHWC"
	LayoutNCHW = "NCHW"
)

// Metadata describes an exported model. Classes is the model's own
// index-to-class mapping.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	Layout      string   `json:"layout"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
}

// InputSize is the number of float32 values one input tensor holds.
func (m Metadata) InputSize() int {
	if len(m.InputShape) == 0 {
		return 0
	}
	n := 1
	for _, d := range m.InputShape {
		n *= int(d)
	}
	return n
}

func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	return ParseMetadata(raw)
}

func ParseMetadata(raw []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.ImageSize <= 0 {
		m.ImageSize = 224
	}
	switch m.Layout {
	case LayoutNHWC, LayoutNCHW:
	default:
		return Metadata{}, fmt.Errorf("unsupported tensor layout %q", m.Layout)
	}
	if len(m.Classes) == 0 {
		return Metadata{}, fmt.Errorf("metadata declares no classes")
	}
	if want := 3 * m.ImageSize * m.ImageSize; len(m.InputShape) > 0 && m.InputSize() != want {
		return Metadata{}, fmt.Errorf("input shape %v does not hold a %dx%d RGB image", m.InputShape, m.ImageSize, m.ImageSize)
	}
	return m, nil
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type ClassifyRequest struct {
	Probabilities []float64 `json:"probabilities"`
}
