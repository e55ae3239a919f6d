package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/verdict"
)

type Config struct {
	Port string

	ModelPath    string
	MetadataPath string

	RejectionThreshold float64
	Labels             []string

	DatabaseURL string
	ImageDir    string
	MaxUploadMB int64
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads the environment. Paths default relative to root.
func Load(root string) (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		ModelPath:    getEnv("MODEL_PATH", filepath.Join(root, "models", "model.onnx")),
		MetadataPath: MetadataPath(root),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		ImageDir:     getEnv("IMAGE_DIR", filepath.Join(root, "uploads")),
	}

	th, err := strconv.ParseFloat(getEnv("REJECTION_THRESHOLD", "0.50"), 64)
	if err != nil {
		return nil, fmt.Errorf("REJECTION_THRESHOLD: %w", err)
	}
	cfg.RejectionThreshold = th

	mb, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "10"), 10, 64)
	if err != nil || mb <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer, got %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadMB = mb

	cfg.Labels = LoadLabels()
	return cfg, nil
}

// LoadLabels reads CLASS_LABELS (comma-separated), falling back to the
// default tomato label set.
func LoadLabels() []string {
	raw := getEnv("CLASS_LABELS", "")
	if raw == "" {
		return append([]string(nil), verdict.DefaultLabels...)
	}
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		labels = append(labels, strings.TrimSpace(l))
	}
	return labels
}

// MetadataPath reads METADATA_PATH, defaulting relative to root.
func MetadataPath(root string) string {
	return getEnv("METADATA_PATH", filepath.Join(root, "models", "model_metadata.json"))
}

// Engine is the decision engine configuration derived from cfg.
func (c *Config) Engine() verdict.Config {
	return verdict.Config{
		Labels:             append([]string(nil), c.Labels...),
		RejectionThreshold: c.RejectionThreshold,
	}
}
