package integrations

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kerbaras/rnaexport/pkg/data"
)

// FileSaver writes exports into a download directory
type FileSaver struct {
	outputDir string
}

func NewFileSaver(outputDir string) *FileSaver {
	return &FileSaver{outputDir: outputDir}
}

// Save streams the payload to {dir}/{job id}.{ext}. The data lands in a
// temporary file first so an interrupted download never leaves a file under
// the final name.
func (s *FileSaver) Save(handle data.JobHandle, payload io.Reader) (string, error) {
	if payload == nil {
		return "", errors.New("payload cannot be nil")
	}

	if strings.TrimSpace(handle.JobID) == "" {
		return "", errors.New("job id cannot be empty")
	}
	name := sanitizeFilename(handle.Filename())

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.outputDir, ".rnaexport-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := io.Copy(tmp, payload); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	outputPath := filepath.Join(s.outputDir, name)
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return outputPath, nil
}

func sanitizeFilename(name string) string {
	// Replace invalid characters with underscores
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	return strings.TrimSpace(result)
}
