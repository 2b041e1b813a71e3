package constants

import "strings"

// SourceKind tells the ingest layer how to read a file.
type SourceKind string

const (
	SourceCSV  SourceKind = "CSV"
	SourceXLSX SourceKind = "XLSX"
	SourceJSON SourceKind = "JSON"
)

// AllowedExtensions holds the source extensions the build understands.
var AllowedExtensions = map[string]SourceKind{
	"csv":  SourceCSV,
	"tsv":  SourceCSV,
	"txt":  SourceCSV,
	"xlsx": SourceXLSX,
	"json": SourceJSON,
}

// Well-known source and snapshot file names.
const (
	SerialsCSV        = "serials.csv"
	MovementsCSV      = "logs.csv"
	MovementsFixedCSV = "logs_fixed.csv"
	RepairsXLSX       = "수리내역logs.xlsx"
	OrdersXLSX        = "물품 주문 내역서.xlsx"
	RepairsCleanJSON  = "repairs_db_clean.json"

	EquipmentDB      = "equipment_db.json"
	MovementsDB      = "movements_db.json"
	RepairsDB        = "repairs_db.json"
	OrderHistoryDB   = "order_history.json"
	OrderItemsDB     = "order_items.json"
	SuppliersDB      = "suppliers.json"
	ProductCatalogDB = "product_catalog.json"
	QCLogsDB         = "QC_logs.json"
	QuotesDB         = "quotes.json"
	PurchaseReqDB    = "purchase_requests.json"
	StatsOverviewDB  = "stats_repairs_overview.json"
)

// ReservedSnapshots are the files whose record shape may not drift.
var ReservedSnapshots = map[string]struct{}{
	EquipmentDB:      {},
	MovementsDB:      {},
	RepairsDB:        {},
	OrderHistoryDB:   {},
	OrderItemsDB:     {},
	SuppliersDB:      {},
	ProductCatalogDB: {},
	QCLogsDB:         {},
	QuotesDB:         {},
	PurchaseReqDB:    {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KindOf returns the source kind for a file extension, if supported.
func KindOf(ext string) (SourceKind, bool) {
	k, ok := AllowedExtensions[NormalizeExt(ext)]
	return k, ok
}

// ERP sync outputs.
const (
	ECountProductsDB  = "backend_ecount_products.json"
	ECountCustomersDB = "backend_ecount_customers.json"
	ECountInventoryDB = "backend_ecount_inventory.json"
)
