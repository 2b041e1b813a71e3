package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/joseph-ayodele/equipment-tracker/constants"
)

// FSIngestor discovers source exports on the local filesystem.
type FSIngestor struct {
	Root   string
	logger *slog.Logger
}

var _ Ingestor = (*FSIngestor)(nil)

func NewFSIngestor(root string, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Root: root, logger: logger}
}

// Path joins name onto the source root.
func (i *FSIngestor) Path(name string) string {
	return filepath.Join(i.Root, name)
}

// Exists reports whether name is a regular file under the source root.
func (i *FSIngestor) Exists(name string) bool {
	st, err := os.Stat(i.Path(name))
	return err == nil && st.Mode().IsRegular()
}

func (i *FSIngestor) Fingerprint(ctx context.Context, path string) (SourceFile, error) {
	var out SourceFile
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("ingest.abs.failed", "path", path, "error", err)
		return out, err
	}

	kind, ok := constants.KindOf(filepath.Ext(abs))
	if !ok {
		return out, fmt.Errorf("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("ingest.open.failed", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("ingest.close.failed", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		i.logger.Error("ingest.hash.failed", "path", abs, "error", err)
		return out, err
	}

	return SourceFile{
		Path:    abs,
		Kind:    kind,
		HashHex: hex.EncodeToString(h.Sum(nil)),
		Size:    n,
	}, nil
}

// MovementFiles returns logs.csv, logs_fixed.csv and every other movement
// export in the source root. Files with identical content are returned once,
// keeping the first in that order.
func (i *FSIngestor) MovementFiles(ctx context.Context) ([]SourceFile, error) {
	var candidates []string
	for _, name := range []string{constants.MovementsCSV, constants.MovementsFixedCSV} {
		if i.Exists(name) {
			candidates = append(candidates, i.Path(name))
		}
	}

	entries, err := os.ReadDir(i.Root)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	var extra []string
	for _, e := range entries {
		if e.IsDir() || IsHidden(e.Name()) || !IsMovementExport(e.Name()) {
			continue
		}
		extra = append(extra, i.Path(e.Name()))
	}
	sort.Strings(extra)
	candidates = append(candidates, extra...)

	seenPath := map[string]struct{}{}
	seenHash := map[string]struct{}{}
	var out []SourceFile
	for _, p := range candidates {
		if _, dup := seenPath[p]; dup {
			continue
		}
		seenPath[p] = struct{}{}

		sf, err := i.Fingerprint(ctx, p)
		if err != nil {
			return out, err
		}
		if _, dup := seenHash[sf.HashHex]; dup {
			i.logger.Info("ingest.movements.duplicate", "path", sf.Path, "sha256", sf.HashHex)
			continue
		}
		seenHash[sf.HashHex] = struct{}{}
		out = append(out, sf)
	}
	return out, nil
}
