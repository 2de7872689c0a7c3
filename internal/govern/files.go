package govern

import (
	"path/filepath"
	"strings"

	"github.com/regintel/riskscan/internal/ingest"
	"github.com/regintel/riskscan/internal/model"
)

// ValidateUpload applies the pre-parse file checks: presence, supported
// extension and size ceiling. Each violation is a distinct user-facing
// error; nothing here reads file content.
func ValidateUpload(filename string, size int64, maxBytes int64) error {
	if filename == "" || size == 0 {
		return model.ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(filename))
	supported := false
	for _, s := range ingest.SupportedExtensions {
		if ext == s {
			supported = true
			break
		}
	}
	if !supported {
		return model.Wrap(model.ErrFileType, "extension %q (supported: %s)", ext, strings.Join(ingest.SupportedExtensions, ", "))
	}

	if maxBytes > 0 && size > maxBytes {
		return model.Wrap(model.ErrFileTooLarge, "%d bytes exceeds limit of %d", size, maxBytes)
	}
	return nil
}
