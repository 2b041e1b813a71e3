package normalize

import (
	"regexp"

	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

// SheetKind is the role of a worksheet in the order workbook.
type SheetKind string

const (
	SheetOrderHistory SheetKind = "order_history"
	SheetOrderItems   SheetKind = "order_items"
	SheetSuppliers    SheetKind = "suppliers"
	SheetCatalog      SheetKind = "product_catalog"
	SheetUnknown      SheetKind = ""
)

// Checked in order; the first matching pattern decides.
var sheetPatterns = []struct {
	kind SheetKind
	re   *regexp.Regexp
}{
	{SheetOrderHistory, regexp.MustCompile(`(?i)주문.?내역|order.?history`)},
	{SheetOrderItems, regexp.MustCompile(`(?i)품목|items?`)},
	{SheetSuppliers, regexp.MustCompile(`(?i)공급|supplier`)},
	{SheetCatalog, regexp.MustCompile(`(?i)카탈로그|catalog|제품`)},
}

// ClassifySheet guesses a worksheet's role from its name.
func ClassifySheet(name string) SheetKind {
	for _, p := range sheetPatterns {
		if p.re.MatchString(name) {
			return p.kind
		}
	}
	return SheetUnknown
}

// Orders maps every recognized sheet of the order workbook. Sheets are
// given as name → rows (header first); a later sheet of the same kind
// replaces an earlier one.
func Orders(sheetNames []string, sheets map[string][][]string) entity.Orders {
	var out entity.Orders
	for _, name := range sheetNames {
		rows := sheets[name]
		switch ClassifySheet(name) {
		case SheetOrderHistory:
			out.History = orderHistory(rows)
		case SheetOrderItems:
			out.Items = orderItems(rows)
		case SheetSuppliers:
			out.Suppliers = suppliers(rows)
		case SheetCatalog:
			out.Catalog = catalog(rows)
		}
	}
	return out
}

func headerRows(rows [][]string) []Row {
	if len(rows) < 2 {
		return nil
	}
	out := make([]Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		out = append(out, NewHeaderRow(rows[0], cells))
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orderHistory(rows [][]string) []entity.OrderHistory {
	out := make([]entity.OrderHistory, 0)
	for _, r := range headerRows(rows) {
		number := r.Lookup("주문번호", "Order No", "OrderNumber")
		if number == "" {
			continue
		}
		out = append(out, entity.OrderHistory{
			ID:          r.Lookup("ID", "번호", "주문ID", "OrderID"),
			OrderNumber: number,
			OrderDate:   dates.Normalize(r.Lookup("주문일자", "Date", "일자")),
			Supplier:    r.Lookup("공급업체", "업체", "거래처", "Supplier"),
			Department:  r.Lookup("부서", "Department"),
			OrderType:   r.Lookup("주문유형", "Type"),
			TotalAmount: Amount(r.Lookup("총금액", "금액", "Total")),
			Status:      orDefault(r.Lookup("상태", "Status"), "주문완료"),
			Remarks:     r.Lookup("비고", "메모", "Remarks"),
		})
	}
	return out
}

func orderItems(rows [][]string) []entity.OrderItem {
	out := make([]entity.OrderItem, 0)
	for _, r := range headerRows(rows) {
		name := r.Lookup("품목명", "제품명", "ProductName")
		if name == "" {
			continue
		}
		it := entity.OrderItem{
			OrderNumber:   r.Lookup("주문번호", "Order No", "OrderNumber"),
			ProductCode:   r.Lookup("품목코드", "제품코드", "ProductCode"),
			ProductName:   name,
			Specification: r.Lookup("규격", "Spec"),
			Unit:          orDefault(r.Lookup("단위", "Unit"), "개"),
			Quantity:      int(Amount(r.Lookup("수량", "Qty"))),
			UnitPrice:     Amount(r.Lookup("단가", "UnitPrice")),
			TotalPrice:    Amount(r.Lookup("금액", "Total")),
			Supplier:      r.Lookup("공급업체", "업체", "Supplier"),
			DeliveryDate:  dates.Normalize(r.Lookup("납기일", "납기", "Delivery")),
			Remarks:       r.Lookup("비고", "메모", "Remarks"),
		}
		if it.TotalPrice == 0 {
			it.TotalPrice = int64(it.Quantity) * it.UnitPrice
		}
		out = append(out, it)
	}
	return out
}

func suppliers(rows [][]string) []entity.Supplier {
	out := make([]entity.Supplier, 0)
	for _, r := range headerRows(rows) {
		name := r.Lookup("업체명", "거래처명", "Company")
		if name == "" {
			continue
		}
		rating := int(Amount(r.Lookup("평점", "Rating")))
		if rating == 0 {
			rating = 5
		}
		out = append(out, entity.Supplier{
			CompanyName:    name,
			BusinessNumber: r.Lookup("사업자번호", "BusinessNo"),
			Representative: r.Lookup("대표자", "대표", "Rep"),
			Address:        r.Lookup("주소", "Address"),
			Phone:          r.Lookup("연락처", "전화", "Phone"),
			Email:          r.Lookup("이메일", "Email"),
			BankInfo:       r.Lookup("은행", "Bank"),
			AccountNumber:  r.Lookup("계좌", "Account"),
			AccountHolder:  r.Lookup("예금주", "Holder"),
			Category:       orDefault(r.Lookup("카테고리", "분류", "Category"), "일반"),
			Rating:         rating,
			Remarks:        r.Lookup("비고", "메모", "Remarks"),
		})
	}
	return out
}

func catalog(rows [][]string) []entity.CatalogProduct {
	out := make([]entity.CatalogProduct, 0)
	for _, r := range headerRows(rows) {
		name := r.Lookup("제품명", "품목명", "ProductName")
		if name == "" {
			continue
		}
		out = append(out, entity.CatalogProduct{
			ProductCode:       r.Lookup("제품코드", "품목코드", "ProductCode"),
			ProductName:       name,
			Category:          orDefault(r.Lookup("카테고리", "분류", "Category"), "일반"),
			Specification:     r.Lookup("규격", "Spec"),
			Unit:              orDefault(r.Lookup("단위", "Unit"), "개"),
			StandardPrice:     Amount(r.Lookup("표준단가", "StandardPrice", "단가")),
			MinPrice:          Amount(r.Lookup("최저가", "MinPrice")),
			MaxPrice:          Amount(r.Lookup("최고가", "MaxPrice")),
			PreferredSupplier: r.Lookup("선호공급업체", "주거래처", "PreferredSupplier"),
			StockLevel:        int(Amount(r.Lookup("재고", "Stock"))),
			ReorderPoint:      int(Amount(r.Lookup("재주문점", "ROP"))),
			Description:       r.Lookup("설명", "Description"),
			Status:            "활성",
		})
	}
	return out
}
