package constants

import "strings"

// LocationKind is the coarse class of a free-text warehouse/site name.
type LocationKind string

const (
	LocationVendor       LocationKind = "업체"
	LocationField        LocationKind = "현장"
	LocationHeadquarters LocationKind = "청명"
	LocationOther        LocationKind = ""
)

// HeadquartersWarehouse is the display location for equipment at home.
const HeadquartersWarehouse = "본사 창고"

// locationMarkers is consulted in order; the first kind with a matching
// substring wins (vendor, then field, then headquarters).
var locationMarkers = []struct {
	kind    LocationKind
	markers []string
}{
	{LocationVendor, []string{"업체"}},
	{LocationField, []string{"현장"}},
	{LocationHeadquarters, []string{"청명", "본사"}},
}

// ClassifyLocation maps free text onto a LocationKind by substring match.
func ClassifyLocation(raw string) LocationKind {
	for _, lm := range locationMarkers {
		for _, m := range lm.markers {
			if strings.Contains(raw, m) {
				return lm.kind
			}
		}
	}
	return LocationOther
}

// Placement is the derived (status, location) pair for one equipment record.
type Placement struct {
	Status   EquipmentStatus
	Location string
}

// PlacementFor derives status and display location from an inbound location.
// Blank text is treated as headquarters; unrecognized text keeps its raw value
// and is flagged StatusUnknown.
func PlacementFor(inLocation string) Placement {
	switch ClassifyLocation(inLocation) {
	case LocationVendor:
		return Placement{Status: StatusUnderRepair, Location: string(LocationVendor)}
	case LocationField:
		return Placement{Status: StatusOperating, Location: string(LocationField)}
	case LocationHeadquarters:
		return Placement{Status: StatusIdle, Location: HeadquartersWarehouse}
	}
	s := strings.TrimSpace(inLocation)
	if s == "" {
		return DefaultPlacement()
	}
	return Placement{Status: StatusUnknown, Location: s}
}

// DefaultPlacement applies to equipment with no movement history.
func DefaultPlacement() Placement {
	return Placement{Status: StatusIdle, Location: HeadquartersWarehouse}
}
