package constants

// EquipmentStatus is the derived status persisted in equipment_db.json.
type EquipmentStatus string

// Stable values (the dashboard matches these exact strings).
const (
	StatusUnderRepair EquipmentStatus = "수리중"  // staying at a vendor
	StatusOperating   EquipmentStatus = "가동 중" // deployed at a field site
	StatusIdle        EquipmentStatus = "대기 중" // back at headquarters
	StatusUnknown     EquipmentStatus = "미확인"  // inbound text matched no known location
)

// RunStatus is the canonical status for rows in the run ledger.
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusOK      RunStatus = "OK"
	RunStatusFailed  RunStatus = "FAILED"
)
