package entity

// ECountEnvelope wraps a synced ERP collection on disk.
type ECountEnvelope[T any] struct {
	SchemaVersion int    `json:"_schemaVersion"`
	GeneratedAt   string `json:"generatedAt"`
	Source        string `json:"source"`
	Disabled      bool   `json:"disabled,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Count         int    `json:"count"`
	Items         []T    `json:"items"`
}

type ECountProduct struct {
	ProductCode   string  `json:"productCode"`
	ProductName   string  `json:"productName"`
	Specification string  `json:"specification"`
	Unit          string  `json:"unit"`
	SalePrice     float64 `json:"salePrice"`
	PurchasePrice float64 `json:"purchasePrice"`
	Category      string  `json:"category"`
	Status        string  `json:"status"`
}

type ECountCustomer struct {
	CustomerCode string `json:"customerCode"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	CEO          string `json:"ceo"`
	Address      string `json:"address"`
	Email        string `json:"email"`
	Type         string `json:"type"`
}

type ECountStock struct {
	ProductCode string  `json:"productCode"`
	Warehouse   string  `json:"warehouse"`
	Qty         float64 `json:"qty"`
	Lot         string  `json:"lot"`
	LastDate    string  `json:"lastDate"`
}
