package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/equipment-tracker/constants"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestIsMovementExport(t *testing.T) {
	assert.True(t, IsMovementExport("8.25~8.28movements_logs.csv"))
	assert.True(t, IsMovementExport("장비이동.CSV"))
	assert.False(t, IsMovementExport("movements.xlsx"))
	assert.False(t, IsMovementExport("serials.csv"))
}

func TestMovementFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, constants.MovementsCSV, "일자,규격\n2024-01-01,S1\n")
	writeFile(t, dir, constants.MovementsFixedCSV, "일자,규격\n2024-01-01,S1\n")
	writeFile(t, dir, "b_movements.csv", "일자,규격\n2024-01-02,S2\n")
	writeFile(t, dir, "a_이동.csv", "일자,규격\n2024-01-03,S3\n")
	writeFile(t, dir, ".hidden_movements.csv", "x")
	writeFile(t, dir, constants.SerialsCSV, "x")

	ing := NewFSIngestor(dir, nil)
	files, err := ing.MovementFiles(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
		assert.Equal(t, constants.SourceCSV, f.Kind)
		assert.Len(t, f.HashHex, 64)
	}
	assert.Equal(t, []string{constants.MovementsCSV, "a_이동.csv", "b_movements.csv"}, names)
}

func TestMovementFilesMissingRoot(t *testing.T) {
	ing := NewFSIngestor(filepath.Join(t.TempDir(), "missing"), nil)
	files, err := ing.MovementFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "serials.csv", "a")
	writeFile(t, dir, "copy/serials.csv", "a")
	writeFile(t, dir, "notes.md", "a")
	writeFile(t, dir, ".cache/x.json", "{}")

	ing := NewFSIngestor(dir, nil)
	results, stats, err := ing.ScanDirectory(context.Background(), true)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, uint32(2), stats.Matched)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(0), stats.Failed)
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := NewFSIngestor(" ", nil).ScanDirectory(context.Background(), true)
	assert.Error(t, err)
}

func TestReadDelimited(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "logs.csv", "회사명: 청명\n일자\t규격\n2024-01-01\tS1\n")

	rows, err := ReadDelimited(p)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"일자", "규격"}, {"2024-01-01", "S1"}}, rows)

	_, err = ReadDelimited(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestReadWorkbook(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, constants.RepairsXLSX)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "수리"))
	require.NoError(t, f.SetSheetRow("수리", "A1", &[]any{"일련번호", "비용"}))
	require.NoError(t, f.SetSheetRow("수리", "A2", &[]any{"S1", 1000}))
	_, err := f.NewSheet("기타")
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	wb, err := ReadWorkbook(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"수리", "기타"}, wb.SheetNames)
	assert.Equal(t, [][]string{{"일련번호", "비용"}, {"S1", "1000"}}, wb.First())
}

func TestReadJSONRecords(t *testing.T) {
	dir := t.TempDir()

	recs, err := ReadJSONRecords(writeFile(t, dir, "a.json", `[{"serial":"S1","cost":10}, 3, null]`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"serial": "S1", "cost": float64(10)}}, recs)

	recs, err = ReadJSONRecords(writeFile(t, dir, "b.json", `{"serial":"S1"}`))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStartWatcher(t *testing.T) {
	t.Run("should require roots", func(t *testing.T) {
		_, _, err := StartWatcher(context.Background(), WatchConfig{})
		assert.Error(t, err)
	})

	t.Run("should batch changed source files", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		batches, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, Debounce: 50 * time.Millisecond})
		require.NoError(t, err)

		writeFile(t, dir, "notes.md", "ignored")
		p := writeFile(t, dir, "logs.csv", "a,b")

		select {
		case batch := <-batches:
			assert.Equal(t, []string{p}, batch)
		case <-time.After(5 * time.Second):
			t.Fatal("no batch received")
		}
	})
}

func TestReadersWrapPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")

	_, err := ReadDelimited(missing)
	require.Error(t, err)
	assert.ErrorContains(t, err, "read "+missing)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "open workbook ")
}
