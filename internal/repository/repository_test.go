package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 7, 9, 30, 15, 0, time.UTC) }

func equipment(serial string) entity.Equipment {
	return entity.Equipment{
		Serial:          serial,
		Category:        "발전기",
		CurrentLocation: constants.HeadquartersWarehouse,
		Status:          constants.StatusIdle,
	}
}

func TestCheckSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.EquipmentDB)

	t.Run("should pass for a missing target", func(t *testing.T) {
		assert.NoError(t, CheckSchema(constants.EquipmentDB, path, []byte(`[{"serial":"S1"}]`)))
	})

	t.Run("should pass for empty or non-array targets", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
		assert.NoError(t, CheckSchema(constants.EquipmentDB, path, []byte(`[{"serial":"S1"}]`)))

		require.NoError(t, os.WriteFile(path, []byte(`{"serial":"S1"}`), 0o644))
		assert.NoError(t, CheckSchema(constants.EquipmentDB, path, []byte(`[{"a":1}]`)))
	})

	t.Run("should reject a changed key set", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`[{"serial":"S1","category":"c","status":"s"}]`), 0o644))

		err := CheckSchema(constants.EquipmentDB, path, []byte(`[{"serial":"S1","category":"c"}]`))
		var drift *SchemaDriftError
		require.ErrorAs(t, err, &drift)
		assert.True(t, errors.Is(err, common.ErrSchemaDrift))
		assert.Equal(t, []string{"status"}, drift.Missing)
		assert.Empty(t, drift.Added)
		assert.Equal(t, []string{"category", "serial", "status"}, drift.Existing)
	})

	t.Run("should reject an empty collection over existing data", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`[{"serial":"S1"}]`), 0o644))
		assert.Error(t, CheckSchema(constants.EquipmentDB, path, []byte(`[]`)))
	})

	t.Run("should ignore files that are not reserved", func(t *testing.T) {
		other := filepath.Join(dir, "notes.json")
		require.NoError(t, os.WriteFile(other, []byte(`[{"a":1}]`), 0o644))
		assert.NoError(t, CheckSchema("notes.json", other, []byte(`[{"b":1}]`)))
	})
}

func TestValidateCollection(t *testing.T) {
	t.Run("should accept valid equipment", func(t *testing.T) {
		data, err := encode([]entity.Equipment{equipment("S1"), equipment("S2")})
		require.NoError(t, err)
		assert.NoError(t, ValidateCollection(constants.EquipmentDB, data))
	})

	t.Run("should itemize problems", func(t *testing.T) {
		e := equipment("S1")
		e.Category = ""
		data, err := encode([]entity.Equipment{e, equipment("S2"), equipment("S2")})
		require.NoError(t, err)

		err = ValidateCollection(constants.EquipmentDB, data)
		var report *ValidationReport
		require.ErrorAs(t, err, &report)
		assert.True(t, errors.Is(err, common.ErrValidation))
		assert.Len(t, report.Problems, 2)
		assert.Equal(t, "#0: category is required", report.Problems[0])
		assert.Contains(t, report.Problems[1], "#2: serial duplicates record #1")
	})

	t.Run("should check equipment counters and percentages", func(t *testing.T) {
		e := equipment("S1")
		e.UptimeEstimatePct = 150
		e.RepairCount = -1
		e.TotalRepairCost = -5
		data, err := encode([]entity.Equipment{e})
		require.NoError(t, err)
		var report *ValidationReport
		require.ErrorAs(t, ValidateCollection(constants.EquipmentDB, data), &report)
		assert.Equal(t, []string{
			"#0: uptimeEstimatePct must be within 0..100 (150)",
			"#0: repairCount must not be negative (-1)",
			"#0: totalRepairCost must not be negative (-5)",
		}, report.Problems)
	})

	t.Run("should report type errors from the schema", func(t *testing.T) {
		err := ValidateCollection(constants.EquipmentDB, []byte(`[{"serial":"S1","category":"c","currentLocation":"","status":"","lastMovement":"","uptimeEstimatePct":"x","repairCount":0,"totalRepairCost":0}]`))
		var report *ValidationReport
		require.ErrorAs(t, err, &report)
		assert.Contains(t, report.Problems[0], "/0/uptimeEstimatePct")
	})

	t.Run("should reject non-array documents", func(t *testing.T) {
		assert.Error(t, ValidateCollection(constants.MovementsDB, []byte(`{"serial":"S1"}`)))
		assert.Error(t, ValidateCollection(constants.MovementsDB, []byte(`not json`)))
	})

	t.Run("should check movement and repair types", func(t *testing.T) {
		assert.Error(t, ValidateCollection(constants.MovementsDB, []byte(`[{"serial":"S1","quantity":"2"}]`)))
		assert.Error(t, ValidateCollection(constants.RepairsDB, []byte(`[{"serial":""}]`)))
		assert.NoError(t, ValidateCollection(constants.RepairsDB, []byte(`[{"serial":"S1","cost":0}]`)))
	})

	t.Run("should truncate long reports", func(t *testing.T) {
		report := &ValidationReport{File: "x.json"}
		for i := 0; i < 25; i++ {
			report.Problems = append(report.Problems, "problem")
		}
		assert.Contains(t, report.Error(), "... (5 more)")
	})
}

func TestSnapshotCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("should back up and replace existing snapshots", func(t *testing.T) {
		dir := t.TempDir()
		repo := newSnapshotRepo(dir, "", fixedNow, nil)

		require.NoError(t, repo.Commit(ctx, Collection{File: constants.EquipmentDB, Records: []entity.Equipment{equipment("S1")}}))
		require.NoError(t, repo.Commit(ctx, Collection{File: constants.EquipmentDB, Records: []entity.Equipment{equipment("S2")}}))

		got, err := ReadSnapshot[entity.Equipment](repo, constants.EquipmentDB)
		require.NoError(t, err)
		assert.Equal(t, []entity.Equipment{equipment("S2")}, got)

		backup := filepath.Join(dir, "history", "equipment_db.20240307-093015.json")
		raw, err := os.ReadFile(backup)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"serial": "S1"`)
	})

	t.Run("should leave the file untouched on schema drift", func(t *testing.T) {
		dir := t.TempDir()
		repo := newSnapshotRepo(dir, "", fixedNow, nil)
		original := `[{"serial":"S1","category":"c","status":"s"}]`
		require.NoError(t, os.WriteFile(repo.Path(constants.EquipmentDB), []byte(original), 0o644))

		type narrow struct {
			Serial   string `json:"serial"`
			Category string `json:"category"`
		}
		err := repo.Commit(ctx,
			Collection{File: constants.MovementsDB, Records: []entity.Movement{{Serial: "S1", Quantity: 1}}},
			Collection{File: constants.EquipmentDB, Records: []narrow{{Serial: "S1", Category: "c"}}},
		)
		require.ErrorIs(t, err, common.ErrSchemaDrift)

		raw, err := os.ReadFile(repo.Path(constants.EquipmentDB))
		require.NoError(t, err)
		assert.Equal(t, original, string(raw))
		assert.NoFileExists(t, repo.Path(constants.MovementsDB))
		assert.NoDirExists(t, filepath.Join(dir, "history"))
	})

	t.Run("should write nothing when validation fails", func(t *testing.T) {
		dir := t.TempDir()
		repo := newSnapshotRepo(dir, "", fixedNow, nil)

		err := repo.Commit(ctx,
			Collection{File: constants.MovementsDB, Records: []entity.Movement{{Serial: "S1", Quantity: 1}}},
			Collection{File: constants.EquipmentDB, Records: []entity.Equipment{equipment("S1"), equipment("S1")}},
		)
		require.ErrorIs(t, err, common.ErrValidation)
		assert.NoFileExists(t, repo.Path(constants.MovementsDB))
		assert.NoFileExists(t, repo.Path(constants.EquipmentDB))
	})

	t.Run("should write nil collections as empty arrays", func(t *testing.T) {
		dir := t.TempDir()
		repo := newSnapshotRepo(dir, "", fixedNow, nil)

		var none []entity.Repair
		require.NoError(t, repo.Commit(ctx, Collection{File: constants.RepairsDB, Records: none}))
		raw, err := os.ReadFile(repo.Path(constants.RepairsDB))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))
	})
}

func TestSnapshotRead(t *testing.T) {
	dir := t.TempDir()
	repo := NewSnapshotRepository(dir, "", nil)

	got, err := ReadSnapshot[entity.Movement](repo, constants.MovementsDB)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, os.WriteFile(repo.Path(constants.MovementsDB), []byte(`{"broken"`), 0o644))
	_, err = ReadSnapshot[entity.Movement](repo, constants.MovementsDB)
	assert.Error(t, err)
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()
	repo := newSnapshotRepo(dir, filepath.Join(dir, "hist"), fixedNow, nil)
	ctx := context.Background()

	require.NoError(t, repo.WriteDocument(ctx, constants.StatsOverviewDB, map[string]int{"a": 1}))
	require.NoError(t, repo.WriteDocument(ctx, constants.StatsOverviewDB, map[string]int{"a": 2}))

	raw, err := os.ReadFile(repo.Path(constants.StatsOverviewDB))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(raw))
	assert.FileExists(t, filepath.Join(dir, "hist", "stats_repairs_overview.20240307-093015.json"))
}

func TestRunLedger(t *testing.T) {
	ctx := context.Background()
	ledger, err := OpenRunLedger(ctx, filepath.Join(t.TempDir(), "history", "runs.db"), nil)
	require.NoError(t, err)
	defer func() { _ = ledger.Close() }()

	ok, err := ledger.Start(ctx, "build-db")
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), ok.Status)
	require.NoError(t, ledger.Finish(ctx, ok.ID, nil, map[string]any{"equipment": 3}))

	failed, err := ledger.Start(ctx, "ecount-sync")
	require.NoError(t, err)
	require.NoError(t, ledger.Finish(ctx, failed.ID, errors.New("boom"), nil))

	got, err := ledger.Get(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusOK), got.Status)
	assert.True(t, got.FinishedAt.Valid)
	assert.JSONEq(t, `{"equipment":3}`, got.StatsJSON.String)

	got, err = ledger.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), got.Status)
	assert.Equal(t, "boom", got.Error.String)

	runs, err := ledger.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = ledger.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, ledger.Finish(ctx, "missing", nil, nil), common.ErrNotFound)
}
