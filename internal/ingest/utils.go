package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/equipment-tracker/constants"
)

// AllowedExt checks if a file extension is a supported source kind.
func AllowedExt(ext string) bool {
	_, ok := constants.KindOf(ext)
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// IsMovementExport reports whether a file name looks like an extra movement
// export: a .csv whose name mentions movements or 이동.
func IsMovementExport(name string) bool {
	lower := strings.ToLower(filepath.Base(name))
	if !strings.HasSuffix(lower, ".csv") {
		return false
	}
	return strings.Contains(lower, "movements") || strings.Contains(lower, "이동")
}
