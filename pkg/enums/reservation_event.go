package enums

// ReservationEventType identifies booking-flow events that change which dates are taken.
type ReservationEventType string

const (
	ReservationEventTypeCreated   ReservationEventType = "reservation.created"
	ReservationEventTypeConfirmed ReservationEventType = "reservation.confirmed"
	ReservationEventTypeCancelled ReservationEventType = "reservation.cancelled"
	ReservationEventTypeCompleted ReservationEventType = "reservation.completed"
)

var reservationEventTypes = []ReservationEventType{
	ReservationEventTypeCreated,
	ReservationEventTypeConfirmed,
	ReservationEventTypeCancelled,
	ReservationEventTypeCompleted,
}

func (v ReservationEventType) String() string { return string(v) }

func (v ReservationEventType) IsValid() bool { return member(reservationEventTypes, v) }

func ParseReservationEventType(value string) (ReservationEventType, error) {
	return parse(reservationEventTypes, "reservation event type", value)
}
