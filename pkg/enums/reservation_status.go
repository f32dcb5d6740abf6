package enums

// ReservationStatus maps to the reservation_status enum in Postgres.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

var reservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCancelled,
	ReservationStatusCompleted,
	ReservationStatusNoShow,
}

// BlockingReservationStatuses hold their dates against new stays.
var BlockingReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
}

func (v ReservationStatus) String() string { return string(v) }

func (v ReservationStatus) IsValid() bool { return member(reservationStatuses, v) }

func (v ReservationStatus) BlocksDates() bool { return member(BlockingReservationStatuses, v) }

func ParseReservationStatus(value string) (ReservationStatus, error) {
	return parse(reservationStatuses, "reservation status", value)
}
