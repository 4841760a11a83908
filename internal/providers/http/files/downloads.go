package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
)

// Save writes a response body to path and rewinds the body afterwards.
//
// Non-2xx responses are refused so that error pages never land on disk.
func Save(resp *client.Response, path string, createDirs bool) (int64, error) {
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("save failed: HTTP %d", resp.StatusCode)
	}

	// Create parent directories if needed
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	resp.Body.Rewind()
	defer resp.Body.Rewind()

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Clean up partial file on error
		os.Remove(path)
		return 0, fmt.Errorf("save failed: %w", err)
	}
	return n, nil
}
