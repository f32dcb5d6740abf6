package enums

// UnitStatus maps to the unit_status enum in Postgres. Only available units
// accept new stays.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "available"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

var unitStatuses = []UnitStatus{UnitStatusAvailable, UnitStatusOccupied, UnitStatusMaintenance}

func (v UnitStatus) String() string { return string(v) }

func (v UnitStatus) IsValid() bool { return member(unitStatuses, v) }

func (v UnitStatus) Bookable() bool { return v == UnitStatusAvailable }

func ParseUnitStatus(value string) (UnitStatus, error) {
	return parse(unitStatuses, "unit status", value)
}
