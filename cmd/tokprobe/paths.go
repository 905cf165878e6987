package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/tokprobe/internal/engine"
)

const envModelsDir = "TOKPROBE_MODELS_DIR"

func resolveModelsDir(flag string) string {
	if dir := strings.TrimSpace(flag); dir != "" {
		return dir
	}
	return strings.TrimSpace(os.Getenv(envModelsDir))
}

// resolveModelPath picks the model directory: --model when set, otherwise the
// only model under the models path.
func resolveModelPath(modelFlag, modelsFlag string, stderr io.Writer) (string, error) {
	if m := strings.TrimSpace(modelFlag); m != "" {
		return filepath.Clean(m), nil
	}

	dir := resolveModelsDir(modelsFlag)
	if dir == "" {
		return "", fmt.Errorf("--model or --models-path is required unless %s is set", envModelsDir)
	}
	models, err := engine.Discover(dir)
	if err != nil {
		return "", err
	}
	switch len(models) {
	case 0:
		return "", fmt.Errorf("no models found in %s", dir)
	case 1:
		_, _ = fmt.Fprintf(stderr, "using model %s\n", models[0].Name)
		return models[0].Path, nil
	default:
		names := make([]string, len(models))
		for i, m := range models {
			names[i] = m.Name
		}
		return "", fmt.Errorf("multiple models found in %s (%s); set --model", dir, strings.Join(names, ", "))
	}
}

func formatModelSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
