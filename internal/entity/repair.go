package entity

// Repair is one repair event from repairs_db.json.
type Repair struct {
	Date    string `json:"date"`
	Serial  string `json:"serial"`
	Company string `json:"company"`
	Details string `json:"details"`
	Cost    int64  `json:"cost"`
}
