package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/ecount"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
	"github.com/joseph-ayodele/equipment-tracker/internal/normalize"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

// Placeholder reasons written when no live data is fetched.
const (
	ReasonDisabled    = "disabled"
	ReasonUnreachable = "unreachable"
)

// ERPClient is the part of the ECOUNT client the sync job needs.
type ERPClient interface {
	EnsureSession(ctx context.Context) (ecount.Session, error)
	Call(ctx context.Context, apiPath string, body any) (json.RawMessage, error)
}

// SyncResult summarizes one ERP sync.
type SyncResult struct {
	Placeholder string
	Products    int
	Customers   int
	Inventory   int
}

func (r SyncResult) Stats() map[string]any {
	return map[string]any{
		"placeholder": r.Placeholder,
		"products":    r.Products,
		"customers":   r.Customers,
		"inventory":   r.Inventory,
	}
}

// Syncer pulls products, customers and stock levels from the ERP into
// envelope files.
type Syncer struct {
	Logger    *slog.Logger
	Client    ERPClient
	Snapshots repository.SnapshotRepository
	Disabled  bool
	PageSize  int
	MaxPages  int
	Now       func() time.Time
}

func NewSyncer(logger *slog.Logger, client ERPClient, snapshots repository.SnapshotRepository, disabled bool, pageSize, maxPages int) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = 500
	}
	if maxPages <= 0 {
		maxPages = 200
	}
	return &Syncer{
		Logger:    logger,
		Client:    client,
		Snapshots: snapshots,
		Disabled:  disabled,
		PageSize:  pageSize,
		MaxPages:  maxPages,
		Now:       time.Now,
	}
}

// Run writes the three envelopes. A disabled ERP or a failed login produces
// placeholder envelopes and no error; a failure after login is fatal.
func (s *Syncer) Run(ctx context.Context) (SyncResult, error) {
	if s.Disabled {
		s.Logger.Info("sync.disabled")
		return SyncResult{Placeholder: ReasonDisabled}, s.placeholders(ctx, ReasonDisabled)
	}
	if _, err := s.Client.EnsureSession(ctx); err != nil {
		s.Logger.Warn("sync.session.unavailable", "error", err)
		return SyncResult{Placeholder: ReasonUnreachable}, s.placeholders(ctx, ReasonUnreachable)
	}

	var res SyncResult
	now := s.Now()

	// every collection is fetched before any envelope is replaced
	products, err := s.fetchPaged(ctx, "/Inventory/GetListProduct", map[string]any{"UseYn": "Y"})
	if err != nil {
		return res, err
	}
	customers, err := s.fetchPaged(ctx, "/Customer/GetListCustomer", map[string]any{"UseYn": "Y"})
	if err != nil {
		return res, err
	}
	stock, err := s.fetchPaged(ctx, "/Inventory/GetListCurrentStock", map[string]any{"StdDt": now.Format("20060102")})
	if err != nil {
		return res, err
	}

	prodItems := mapFilter(products, Product, func(p entity.ECountProduct) bool { return p.ProductCode != "" || p.ProductName != "" })
	custItems := mapFilter(customers, Customer, func(c entity.ECountCustomer) bool { return c.CustomerCode != "" || c.CustomerName != "" })
	stockItems := mapFilter(stock, Stock, func(i entity.ECountStock) bool { return i.ProductCode != "" })

	if err := s.write(ctx, constants.ECountProductsDB, envelope(now, prodItems)); err != nil {
		return res, err
	}
	res.Products = len(prodItems)
	if err := s.write(ctx, constants.ECountCustomersDB, envelope(now, custItems)); err != nil {
		return res, err
	}
	res.Customers = len(custItems)
	if err := s.write(ctx, constants.ECountInventoryDB, envelope(now, stockItems)); err != nil {
		return res, err
	}
	res.Inventory = len(stockItems)

	s.Logger.Info("sync.done", "products", res.Products, "customers", res.Customers, "inventory", res.Inventory)
	return res, nil
}

func envelope[T any](now time.Time, items []T) entity.ECountEnvelope[T] {
	return entity.ECountEnvelope[T]{
		SchemaVersion: 1,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		Source:        "ecount",
		Count:         len(items),
		Items:         items,
	}
}

func placeholder[T any](now time.Time, reason string) entity.ECountEnvelope[T] {
	e := envelope(now, []T{})
	e.Disabled = true
	e.Reason = reason
	return e
}

func (s *Syncer) placeholders(ctx context.Context, reason string) error {
	now := s.Now()
	if err := s.write(ctx, constants.ECountProductsDB, placeholder[entity.ECountProduct](now, reason)); err != nil {
		return err
	}
	if err := s.write(ctx, constants.ECountCustomersDB, placeholder[entity.ECountCustomer](now, reason)); err != nil {
		return err
	}
	return s.write(ctx, constants.ECountInventoryDB, placeholder[entity.ECountStock](now, reason))
}

func (s *Syncer) write(ctx context.Context, file string, doc any) error {
	if err := s.Snapshots.WriteDocument(ctx, file, doc); err != nil {
		s.Logger.Error("sync.write.failed", "file", file, "error", err)
		return err
	}
	return nil
}

// pageShape covers the list and total locations seen in ERP responses.
type pageShape struct {
	Data struct {
		List   []map[string]any `json:"List"`
		Datas  []map[string]any `json:"Datas"`
		Result []map[string]any `json:"Result"`
		Total  json.RawMessage  `json:"Total"`
	} `json:"Data"`
	List  []map[string]any `json:"List"`
	Datas []map[string]any `json:"Datas"`
	Total json.RawMessage  `json:"Total"`
}

func (p pageShape) items() []map[string]any {
	for _, l := range [][]map[string]any{p.Data.List, p.Data.Datas, p.List, p.Datas, p.Data.Result} {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

// total reads Total as a number or a numeric string. Anything else counts
// as unknown.
func (p pageShape) total() int {
	for _, raw := range []json.RawMessage{p.Data.Total, p.Total} {
		if v, err := strconv.Atoi(totalText(raw)); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func totalText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// fetchPaged requests pages until one comes back empty, the reported total
// is reached or MaxPages is exhausted.
func (s *Syncer) fetchPaged(ctx context.Context, apiPath string, req map[string]any) ([]map[string]any, error) {
	var out []map[string]any
	for page := 1; page <= s.MaxPages; page++ {
		body := maps.Clone(req)
		body["Page"] = page
		body["PageSize"] = s.PageSize

		raw, err := s.Client.Call(ctx, apiPath, body)
		if err != nil {
			return out, err
		}
		var shape pageShape
		if err := json.Unmarshal(raw, &shape); err != nil {
			s.Logger.Warn("sync.page.unrecognized", "path", apiPath, "page", page, "error", err)
			break
		}
		list := shape.items()
		if len(list) == 0 {
			break
		}
		out = append(out, list...)
		if total := shape.total(); total > 0 && len(out) >= total {
			break
		}
	}
	s.Logger.Info("sync.fetch.ok", "path", apiPath, "rows", len(out))
	return out, nil
}

func mapFilter[T any](in []map[string]any, conv func(map[string]any) T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, m := range in {
		if v := conv(m); keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// first returns the first value among keys that is neither missing, null,
// empty, zero nor false.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return v
			}
		case bool:
			if v {
				return v
			}
		default:
			return v
		}
	}
	return nil
}

func text(m map[string]any, def string, keys ...string) string {
	v := first(m, keys...)
	if v == nil {
		return def
	}
	return strings.TrimSpace(normalize.Stringify(v))
}

func number(m map[string]any, keys ...string) float64 {
	switch v := first(m, keys...).(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

func Product(p map[string]any) entity.ECountProduct {
	return entity.ECountProduct{
		ProductCode:   text(p, "", "PROD_CD", "ProdCd", "prod_cd"),
		ProductName:   text(p, "", "PROD_DES", "ProdDes", "prod_des"),
		Specification: text(p, "", "STND_DES", "StndDes", "stnd_des"),
		Unit:          text(p, "EA", "UNIT_DES", "UnitDes", "unit_des"),
		SalePrice:     number(p, "SALE_PRICE", "SalePrice"),
		PurchasePrice: number(p, "PUR_PRICE", "PurPrice"),
		Category:      text(p, "", "CATEGORY", "Category", "category"),
		Status:        text(p, "활성", "STATUS", "Status", "status"),
	}
}

func Customer(c map[string]any) entity.ECountCustomer {
	return entity.ECountCustomer{
		CustomerCode: text(c, "", "CUST_CD", "CustCd"),
		CustomerName: text(c, "", "CUST_DES", "CustDes"),
		Phone:        text(c, "", "TEL", "Phone"),
		CEO:          text(c, "", "CEO_DES", "CeoDes"),
		Address:      text(c, "", "ADDR", "Address"),
		Email:        text(c, "", "EMAIL", "Email"),
		Type:         text(c, "", "CUST_TYPE", "CustType"),
	}
}

func Stock(i map[string]any) entity.ECountStock {
	return entity.ECountStock{
		ProductCode: text(i, "", "PROD_CD", "ProdCd"),
		Warehouse:   text(i, "", "WH_CD", "WhCd", "WH_DES", "WhDes"),
		Qty:         number(i, "QTY", "Qty", "STOCK_QTY"),
		Lot:         text(i, "", "LOT", "Lot"),
		LastDate:    text(i, "", "LAST_DT", "LastDate"),
	}
}
