package entity

// Movement is a transfer of equipment between locations, as stored in
// movements_db.json.
type Movement struct {
	Date          string `json:"date"`
	OutLocation   string `json:"outLocation"`
	InLocation    string `json:"inLocation"`
	EquipmentName string `json:"equipmentName"`
	Serial        string `json:"serial"`
	Quantity      int    `json:"quantity"`
	Note          string `json:"note"`
	Status        string `json:"status"`
}
