package enums

// RestrictionType names the rule that made a stay unbookable.
type RestrictionType string

const (
	RestrictionTypeMinimumStay  RestrictionType = "minimum_stay"
	RestrictionTypeMaximumStay  RestrictionType = "maximum_stay"
	RestrictionTypeBlockedDates RestrictionType = "blocked_dates"
)

var restrictionTypes = []RestrictionType{
	RestrictionTypeMinimumStay,
	RestrictionTypeMaximumStay,
	RestrictionTypeBlockedDates,
}

func (v RestrictionType) String() string { return string(v) }

func (v RestrictionType) IsValid() bool { return member(restrictionTypes, v) }

func ParseRestrictionType(value string) (RestrictionType, error) {
	return parse(restrictionTypes, "restriction type", value)
}
