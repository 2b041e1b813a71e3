package entity

// StatsOverview is the stats_repairs_overview.json document.
type StatsOverview struct {
	SchemaVersion int           `json:"_schemaVersion"`
	GeneratedAt   string        `json:"generatedAt"`
	SourceFiles   []string      `json:"sourceFiles"`
	Totals        StatsTotals   `json:"totals"`
	BySerial      []SerialStats `json:"bySerial"`
	Rules         StatsRules    `json:"rules"`
}

type StatsTotals struct {
	TravelCount       int `json:"travelCount"`
	RepairCount       int `json:"repairCount"`
	SerialsWithTravel int `json:"serialsWithTravel"`
	SerialsWithRepair int `json:"serialsWithRepair"`
}

type SerialStats struct {
	Serial      string `json:"serial"`
	TravelCount int    `json:"travelCount"`
	RepairCount int    `json:"repairCount"`
	LastDate    string `json:"lastDate"`
}

type StatsRules struct {
	TravelPair string `json:"travelPair"`
	RepairPair string `json:"repairPair"`
	Notes      string `json:"notes"`
}

// VerifyReport compares stored equipment state with the state implied by
// the movement history.
type VerifyReport struct {
	Total            int        `json:"total"`
	WithMove         int        `json:"withMove"`
	NoMove           int        `json:"noMove"`
	Mismatches       int        `json:"mismatches"`
	SampleMismatches []Mismatch `json:"sampleMismatches"`
}

type Mismatch struct {
	Serial   string    `json:"serial"`
	Expected Placement `json:"expected"`
	Actual   Placement `json:"actual"`
	LastIn   string    `json:"lastIn"`
	LastOut  string    `json:"lastOut"`
}

type Placement struct {
	Status string `json:"status"`
	Loc    string `json:"loc"`
	Date   string `json:"date"`
}
