package reservations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/pkg/enums"
)

// attributeEventType is the Pub/Sub attribute the booking flow sets on every
// reservation event. The envelope's eventType is used when it is missing.
const attributeEventType = "eventType"

// Envelope is the JSON body of a reservation event.
type Envelope struct {
	Version    int                        `json:"version"`
	EventID    string                     `json:"eventId"`
	EventType  enums.ReservationEventType `json:"eventType"`
	OccurredAt time.Time                  `json:"occurredAt"`
	Data       json.RawMessage            `json:"data"`
}

// ReservationPayload is the data block shared by all reservation events.
type ReservationPayload struct {
	ReservationID uuid.UUID               `json:"reservationId"`
	UnitID        uuid.UUID               `json:"unitId"`
	Status        enums.ReservationStatus `json:"status,omitempty"`
	CheckIn       string                  `json:"checkIn,omitempty"`
	CheckOut      string                  `json:"checkOut,omitempty"`
}
