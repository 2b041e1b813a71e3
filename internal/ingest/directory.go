package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ScanDirectory walks the source root, skips hidden entries if requested,
// and fingerprints every supported file. Files whose content was already
// seen during the walk are flagged Deduplicated.
func (i *FSIngestor) ScanDirectory(ctx context.Context, skipHidden bool) ([]SourceFile, DirStats, error) {
	if strings.TrimSpace(i.Root) == "" {
		return nil, DirStats{}, errors.New("source root is required")
	}

	var results []SourceFile
	var stats DirStats
	seen := map[string]struct{}{}

	err := filepath.WalkDir(i.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, SourceFile{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != i.Root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		sf, err := i.Fingerprint(ctx, path)
		if err != nil {
			results = append(results, SourceFile{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if _, dup := seen[sf.HashHex]; dup {
			sf.Deduplicated = true
			stats.Deduplicated++
		}
		seen[sf.HashHex] = struct{}{}

		results = append(results, sf)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Debug("ingest.scan.ok", "root", i.Root, "matched", stats.Matched, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}
