package ingest

import (
	"context"

	"github.com/joseph-ayodele/equipment-tracker/constants"
)

// SourceFile is the per-file discovery outcome.
type SourceFile struct {
	Path         string
	Kind         constants.SourceKind
	HashHex      string
	Size         int64
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the build pipeline depends on.
type Ingestor interface {
	// Path joins a file name onto the source root.
	Path(name string) string
	// Exists reports whether name is a regular file under the source root.
	Exists(name string) bool
	// Fingerprint hashes a single path.
	Fingerprint(ctx context.Context, path string) (SourceFile, error)
	// ScanDirectory fingerprints every supported file under the source root.
	ScanDirectory(ctx context.Context, skipHidden bool) ([]SourceFile, DirStats, error)
	// MovementFiles lists the distinct movement exports to parse.
	MovementFiles(ctx context.Context) ([]SourceFile, error)
}
