package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Exporter writes reports to files in a cache directory, e.g. the filtered
// diagnostic list of the viewer
type Exporter struct {
	dir  string
	opts Options
}

// NewExporter creates an exporter writing to dir; "" means the temp dir
func NewExporter(dir string, opts Options) *Exporter {
	if dir == "" {
		dir = os.TempDir()
	}
	// Exported files are read by other tools, never colored.
	opts.Styles = nil
	return &Exporter{dir: dir, opts: opts}
}

// Export writes r to a new file and returns its path
func (e *Exporter) Export(r Report) (string, error) {
	base := strings.TrimSuffix(filepath.Base(r.Log), filepath.Ext(r.Log))
	if base == "" || base == "." {
		base = "stdin"
	}

	ext := string(e.opts.Format)
	if ext == "" {
		ext = string(FormatText)
	}

	out, err := os.CreateTemp(e.dir, fmt.Sprintf("texlog-%s-*.%s", base, ext))
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	path := out.Name()

	if err := Write(out, []Report{r}, e.opts); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	return path, nil
}

// Cleanup removes an exported file
func (e *Exporter) Cleanup(path string) error {
	if path == "" {
		return nil
	}
	return os.Remove(path)
}
