package entity

import "github.com/joseph-ayodele/equipment-tracker/constants"

// Equipment is one element of equipment_db.json. Every field is always
// serialized so the snapshot key set stays stable between builds.
type Equipment struct {
	Serial            string                    `json:"serial"`
	Category          string                    `json:"category"`
	CurrentLocation   string                    `json:"currentLocation"`
	Status            constants.EquipmentStatus `json:"status"`
	LastMovement      string                    `json:"lastMovement"`
	UptimeEstimatePct int                       `json:"uptimeEstimatePct"`
	RepairCount       int                       `json:"repairCount"`
	TotalRepairCost   int64                     `json:"totalRepairCost"`
}

// SerialEntry is one row of the serial master list.
type SerialEntry struct {
	Serial   string
	Category string
}
