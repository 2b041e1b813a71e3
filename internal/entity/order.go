package entity

// OrderHistory is a purchase order header from the order workbook.
type OrderHistory struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	OrderDate   string `json:"orderDate"`
	Supplier    string `json:"supplier"`
	Department  string `json:"department"`
	OrderType   string `json:"orderType"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
	Remarks     string `json:"remarks"`
}

// OrderItem is a single line of a purchase order.
type OrderItem struct {
	OrderNumber   string `json:"orderHistoryId"`
	ProductCode   string `json:"productCode"`
	ProductName   string `json:"productName"`
	Specification string `json:"specification"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unitPrice"`
	TotalPrice    int64  `json:"totalPrice"`
	Supplier      string `json:"supplier"`
	DeliveryDate  string `json:"deliveryDate"`
	Remarks       string `json:"remarks"`
}

// Supplier is a vendor the organization orders from.
type Supplier struct {
	CompanyName    string `json:"companyName"`
	BusinessNumber string `json:"businessNumber"`
	Representative string `json:"representative"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	BankInfo       string `json:"bankInfo"`
	AccountNumber  string `json:"accountNumber"`
	AccountHolder  string `json:"accountHolder"`
	Category       string `json:"category"`
	Rating         int    `json:"rating"`
	Remarks        string `json:"remarks"`
}

// CatalogProduct is a product catalog entry.
type CatalogProduct struct {
	ProductCode       string `json:"productCode"`
	ProductName       string `json:"productName"`
	Category          string `json:"category"`
	Specification     string `json:"specification"`
	Unit              string `json:"unit"`
	StandardPrice     int64  `json:"standardPrice"`
	MinPrice          int64  `json:"minPrice"`
	MaxPrice          int64  `json:"maxPrice"`
	PreferredSupplier string `json:"preferredSupplier"`
	StockLevel        int    `json:"stockLevel"`
	ReorderPoint      int    `json:"reorderPoint"`
	Description       string `json:"description"`
	Status            string `json:"status"`
}

// Orders bundles everything parsed from the order workbook.
type Orders struct {
	History   []OrderHistory
	Items     []OrderItem
	Suppliers []Supplier
	Catalog   []CatalogProduct
}

// Empty reports whether no sheet produced any rows.
func (o Orders) Empty() bool {
	return len(o.History) == 0 && len(o.Items) == 0 && len(o.Suppliers) == 0 && len(o.Catalog) == 0
}
