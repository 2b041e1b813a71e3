package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

// BackupLayout is the timestamp layout used in backup file names.
const BackupLayout = "20060102-150405"

// Collection is one snapshot file about to be committed.
type Collection struct {
	File    string
	Records any
}

// SnapshotRepository reads and commits the JSON snapshot files.
type SnapshotRepository interface {
	// Path returns the absolute location of a snapshot file.
	Path(file string) string
	// Read decodes a snapshot file into dst. It reports false when the file
	// does not exist.
	Read(file string, dst any) (bool, error)
	// Commit guards, validates, backs up and writes the collections. Nothing
	// is backed up or written unless every collection passes.
	Commit(ctx context.Context, cols ...Collection) error
	// WriteDocument writes a non-collection JSON document with a backup.
	WriteDocument(ctx context.Context, file string, doc any) error
}

type snapshotRepo struct {
	dir        string
	historyDir string
	now        func() time.Time
	logger     *slog.Logger
}

func NewSnapshotRepository(dir, historyDir string, logger *slog.Logger) SnapshotRepository {
	return newSnapshotRepo(dir, historyDir, time.Now, logger)
}

func newSnapshotRepo(dir, historyDir string, now func() time.Time, logger *slog.Logger) *snapshotRepo {
	if logger == nil {
		logger = slog.Default()
	}
	if historyDir == "" {
		historyDir = filepath.Join(dir, "history")
	}
	return &snapshotRepo{dir: dir, historyDir: historyDir, now: now, logger: logger}
}

func (r *snapshotRepo) Path(file string) string {
	return filepath.Join(r.dir, file)
}

func (r *snapshotRepo) Read(file string, dst any) (bool, error) {
	raw, err := os.ReadFile(r.Path(file))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, common.NewAppError("SNAPSHOT_READ", "read "+file, errors.Join(common.ErrStorage, err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, common.NewAppError("SNAPSHOT_DECODE", "decode "+file, err)
	}
	return true, nil
}

type prepared struct {
	file string
	data []byte
}

func (r *snapshotRepo) Commit(ctx context.Context, cols ...Collection) error {
	batch := make([]prepared, 0, len(cols))
	for _, c := range cols {
		data, err := encode(c.Records)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.File, err)
		}
		batch = append(batch, prepared{file: c.File, data: data})
	}

	for _, p := range batch {
		if err := CheckSchema(p.file, r.Path(p.file), p.data); err != nil {
			r.logger.Error("snapshot.schema.drift", "file", p.file, "error", err)
			return err
		}
	}
	for _, p := range batch {
		if err := ValidateCollection(p.file, p.data); err != nil {
			r.logger.Error("snapshot.validate.failed", "file", p.file, "error", err)
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	stamp := r.now().Format(BackupLayout)
	for _, p := range batch {
		if _, err := r.backup(p.file, stamp); err != nil {
			return err
		}
	}
	for _, p := range batch {
		if err := r.write(p.file, p.data); err != nil {
			return err
		}
		r.logger.Info("snapshot.write.ok", "file", p.file, "bytes", len(p.data))
	}
	return nil
}

func (r *snapshotRepo) WriteDocument(ctx context.Context, file string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", file, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.backup(file, r.now().Format(BackupLayout)); err != nil {
		return err
	}
	if err := r.write(file, data); err != nil {
		return err
	}
	r.logger.Info("snapshot.write.ok", "file", file, "bytes", len(data))
	return nil
}

func encode(records any) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return []byte("[]"), nil
	}
	return data, nil
}

// backup copies an existing snapshot to history/<logical>.<stamp>.json.
func (r *snapshotRepo) backup(file, stamp string) (string, error) {
	src := r.Path(file)
	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", common.NewAppError("SNAPSHOT_BACKUP", "open "+file, errors.Join(common.ErrStorage, err))
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(r.historyDir, 0o755); err != nil {
		return "", common.NewAppError("SNAPSHOT_BACKUP", "create history dir", errors.Join(common.ErrStorage, err))
	}
	logical := strings.TrimSuffix(file, filepath.Ext(file))
	dst := filepath.Join(r.historyDir, fmt.Sprintf("%s.%s.json", logical, stamp))

	out, err := os.Create(dst)
	if err != nil {
		return "", common.NewAppError("SNAPSHOT_BACKUP", "create "+dst, errors.Join(common.ErrStorage, err))
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", common.NewAppError("SNAPSHOT_BACKUP", "copy "+file, errors.Join(common.ErrStorage, err))
	}
	if err := out.Close(); err != nil {
		return "", common.NewAppError("SNAPSHOT_BACKUP", "close "+dst, errors.Join(common.ErrStorage, err))
	}
	r.logger.Info("snapshot.backup.ok", "file", file, "backup", dst)
	return dst, nil
}

// write replaces a snapshot through a temp file and rename so readers never
// see a partial file.
func (r *snapshotRepo) write(file string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return common.NewAppError("SNAPSHOT_WRITE", "create db dir", errors.Join(common.ErrStorage, err))
	}
	tmp, err := os.CreateTemp(r.dir, "."+file+".*.tmp")
	if err != nil {
		return common.NewAppError("SNAPSHOT_WRITE", "create temp for "+file, errors.Join(common.ErrStorage, err))
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return common.NewAppError("SNAPSHOT_WRITE", "write "+file, errors.Join(common.ErrStorage, err))
	}
	if err := tmp.Close(); err != nil {
		return common.NewAppError("SNAPSHOT_WRITE", "close "+file, errors.Join(common.ErrStorage, err))
	}
	if err := os.Rename(tmpName, r.Path(file)); err != nil {
		return common.NewAppError("SNAPSHOT_WRITE", "replace "+file, errors.Join(common.ErrStorage, err))
	}
	return nil
}

// ReadSnapshot decodes a snapshot array of T. A missing file yields nil.
func ReadSnapshot[T any](repo SnapshotRepository, file string) ([]T, error) {
	var out []T
	if _, err := repo.Read(file, &out); err != nil {
		return nil, err
	}
	return out, nil
}
