// Package pipeline runs the batch jobs behind the CLIs: building the
// snapshot databases, deriving statistics, verifying equipment state and
// syncing ERP master data.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
	"github.com/joseph-ayodele/equipment-tracker/internal/export"
	"github.com/joseph-ayodele/equipment-tracker/internal/ingest"
	"github.com/joseph-ayodele/equipment-tracker/internal/normalize"
	"github.com/joseph-ayodele/equipment-tracker/internal/reconcile"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

// BuildResult summarizes one build.
type BuildResult struct {
	SourceFiles     int
	DuplicateFiles  int
	Serials         int
	MovementFiles   int
	ParsedMovements int
	Movements       int
	ParsedRepairs   int
	Repairs         int
	Equipment       int
	Orders          *entity.Orders
	Exported        []string
}

// Stats flattens the result for the run ledger.
func (r BuildResult) Stats() map[string]any {
	m := map[string]any{
		"source_files":     r.SourceFiles,
		"duplicate_files":  r.DuplicateFiles,
		"serials":          r.Serials,
		"movement_files":   r.MovementFiles,
		"parsed_movements": r.ParsedMovements,
		"movements":        r.Movements,
		"parsed_repairs":   r.ParsedRepairs,
		"repairs":          r.Repairs,
		"equipment":        r.Equipment,
		"exported":         len(r.Exported),
	}
	if r.Orders != nil {
		m["order_history"] = len(r.Orders.History)
		m["order_items"] = len(r.Orders.Items)
		m["suppliers"] = len(r.Orders.Suppliers)
		m["product_catalog"] = len(r.Orders.Catalog)
	}
	return m
}

// Builder turns the source exports into the snapshot databases.
type Builder struct {
	Logger       *slog.Logger
	Source       ingest.Ingestor
	Snapshots    repository.SnapshotRepository
	Exporter     *export.Service
	EnableOrders bool
}

func NewBuilder(logger *slog.Logger, source ingest.Ingestor, snapshots repository.SnapshotRepository, exporter *export.Service, enableOrders bool) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Logger: logger, Source: source, Snapshots: snapshots, Exporter: exporter, EnableOrders: enableOrders}
}

// Run parses every source, merges with the previous snapshots and commits
// the result. Nothing is written when guarding or validation fails.
func (b *Builder) Run(ctx context.Context) (BuildResult, error) {
	start := time.Now()
	var res BuildResult
	b.Logger.Info("build.start", "source_dir", b.Source.Path(""))

	if err := b.inventory(ctx, &res); err != nil {
		return res, err
	}

	serials, err := b.serials()
	if err != nil {
		return res, err
	}
	res.Serials = len(serials)

	parsed, files, err := b.movements(ctx)
	if err != nil {
		return res, err
	}
	res.MovementFiles, res.ParsedMovements = files, len(parsed)

	parsedRepairs, err := b.repairs()
	if err != nil {
		return res, err
	}
	res.ParsedRepairs = len(parsedRepairs)

	prevEquipment, err := repository.ReadSnapshot[entity.Equipment](b.Snapshots, constants.EquipmentDB)
	if err != nil {
		return res, err
	}
	prevMoves, err := repository.ReadSnapshot[entity.Movement](b.Snapshots, constants.MovementsDB)
	if err != nil {
		return res, err
	}
	prevRepairs, err := repository.ReadSnapshot[entity.Repair](b.Snapshots, constants.RepairsDB)
	if err != nil {
		return res, err
	}

	moves := reconcile.MergeMovements(prevMoves, parsed)
	repairs := reconcile.MergeRepairs(prevRepairs, parsedRepairs)
	equipment := reconcile.DeriveEquipment(serials, moves, repairs, prevEquipment)
	res.Movements, res.Repairs, res.Equipment = len(moves), len(repairs), len(equipment)
	b.Logger.Info("build.reconcile.ok",
		"equipment", len(equipment),
		"movements", len(moves),
		"repairs", len(repairs),
	)

	cols := []repository.Collection{
		{File: constants.EquipmentDB, Records: equipment},
		{File: constants.MovementsDB, Records: moves},
		{File: constants.RepairsDB, Records: repairs},
	}
	if orders, ok, err := b.orders(); err != nil {
		return res, err
	} else if ok {
		res.Orders = &orders
		cols = append(cols,
			repository.Collection{File: constants.OrderHistoryDB, Records: orders.History},
			repository.Collection{File: constants.OrderItemsDB, Records: orders.Items},
			repository.Collection{File: constants.SuppliersDB, Records: orders.Suppliers},
			repository.Collection{File: constants.ProductCatalogDB, Records: orders.Catalog},
		)
	}

	if err := b.Snapshots.Commit(ctx, cols...); err != nil {
		b.Logger.Error("build.commit.failed", "error", err)
		return res, err
	}

	if b.Exporter != nil {
		written, err := b.Exporter.WriteAll(ctx, export.Snapshot{Equipment: equipment, Movements: moves, Repairs: repairs})
		res.Exported = written
		if err != nil {
			b.Logger.Error("build.export.failed", "error", err)
			return res, err
		}
	}

	b.Logger.Info("build.done", "elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// inventory fingerprints every supported file under the source root so
// copies and unreadable files show up in the run stats.
func (b *Builder) inventory(ctx context.Context, res *BuildResult) error {
	files, stats, err := b.Source.ScanDirectory(ctx, true)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.Err != "" {
			b.Logger.Warn("build.sources.unreadable", "path", f.Path, "error", f.Err)
		}
	}
	res.SourceFiles = int(stats.Succeeded)
	res.DuplicateFiles = int(stats.Deduplicated)
	b.Logger.Info("build.sources.scanned",
		"files", stats.Succeeded,
		"duplicates", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return nil
}

func (b *Builder) serials() ([]entity.SerialEntry, error) {
	if !b.Source.Exists(constants.SerialsCSV) {
		b.Logger.Warn("build.serials.missing", "path", b.Source.Path(constants.SerialsCSV))
		return nil, nil
	}
	rows, err := ingest.ReadDelimited(b.Source.Path(constants.SerialsCSV))
	if err != nil {
		return nil, err
	}
	out := normalize.Serials(rows)
	b.Logger.Info("build.serials.parsed", "rows", len(rows), "serials", len(out))
	return out, nil
}

// movements parses every discovered movement export. A file that cannot be
// parsed is skipped with a warning.
func (b *Builder) movements(ctx context.Context) ([]entity.Movement, int, error) {
	files, err := b.Source.MovementFiles(ctx)
	if err != nil {
		return nil, 0, err
	}
	var out []entity.Movement
	for _, f := range files {
		rows, err := ingest.ReadDelimited(f.Path)
		if err != nil {
			b.Logger.Warn("build.movements.parse_failed", "path", f.Path, "error", err)
			continue
		}
		part := normalize.Movements(rows)
		b.Logger.Debug("build.movements.file", "path", f.Path, "rows", len(part))
		out = append(out, part...)
	}
	b.Logger.Info("build.movements.parsed", "files", len(files), "rows", len(out))
	return out, len(files), nil
}

// repairs reads the repair workbook, falling back to the cleaned JSON
// export in the database directory when the workbook is absent or empty.
func (b *Builder) repairs() ([]entity.Repair, error) {
	var out []entity.Repair
	if b.Source.Exists(constants.RepairsXLSX) {
		wb, err := ingest.ReadWorkbook(b.Source.Path(constants.RepairsXLSX))
		if err != nil {
			return nil, err
		}
		out = normalize.Repairs(wb.First())
		b.Logger.Info("build.repairs.parsed", "source", constants.RepairsXLSX, "rows", len(out))
	} else {
		b.Logger.Info("build.repairs.workbook_missing", "path", b.Source.Path(constants.RepairsXLSX))
	}
	if len(out) > 0 {
		return out, nil
	}

	clean := b.Snapshots.Path(constants.RepairsCleanJSON)
	records, err := ingest.ReadJSONRecords(clean)
	if err != nil {
		// the fallback is optional
		b.Logger.Debug("build.repairs.fallback_unavailable", "path", clean, "error", err)
		return out, nil
	}
	out = normalize.CleanRepairs(records)
	b.Logger.Info("build.repairs.fallback", "source", constants.RepairsCleanJSON, "rows", len(out))
	return out, nil
}

func (b *Builder) orders() (entity.Orders, bool, error) {
	if !b.EnableOrders {
		b.Logger.Info("build.orders.skipped", "reason", "ENABLE_ORDER_PARSING not set")
		return entity.Orders{}, false, nil
	}
	if !b.Source.Exists(constants.OrdersXLSX) {
		b.Logger.Info("build.orders.skipped", "reason", "workbook missing")
		return entity.Orders{}, false, nil
	}
	wb, err := ingest.ReadWorkbook(b.Source.Path(constants.OrdersXLSX))
	if err != nil {
		return entity.Orders{}, false, err
	}
	orders := normalize.Orders(wb.SheetNames, wb.Sheets)
	b.Logger.Info("build.orders.parsed",
		"order_history", len(orders.History),
		"order_items", len(orders.Items),
		"suppliers", len(orders.Suppliers),
		"product_catalog", len(orders.Catalog),
	)
	return orders, true, nil
}
