package booking

import (
	"strings"
	"time"
)

// Appointment statuses. Rows are never physically deleted.
const (
	StatusActive    = "ativo"
	StatusCancelled = "cancelado"
)

// EventDuration is the calendar block reserved per appointment.
const EventDuration = 30 * time.Minute

// WhenLayout is the timestamp wire format used across the dialogue.
const WhenLayout = "2006-01-02T15:04:05"

// CatalogServices are the bookable services, as persisted in servicos.nome.
var CatalogServices = []string{"Corte", "Barba", "Corte + Barba"}

// ValidService reports whether a name matches the fixed catalog,
// case-insensitively.
func ValidService(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, s := range CatalogServices {
		if strings.ToLower(s) == normalized {
			return true
		}
	}
	return false
}

// BookRequest is the input to Book.
type BookRequest struct {
	ClientID   int64
	ClientName string
	Services   []string
	When       string // WhenLayout in the scheduling timezone
}

// BookResult reports a committed booking.
type BookResult struct {
	AppointmentID int64
	EventID       string
}

// CancelRequest is the input to Cancel. EventID and ClientID are optional;
// ClientID, when set, scopes the operation to that owner.
type CancelRequest struct {
	AppointmentID int64
	EventID       string
	ClientID      int64
}

// RescheduleRequest is the input to Reschedule.
type RescheduleRequest struct {
	AppointmentID int64
	NewWhen       string // WhenLayout in the scheduling timezone
	EventID       string
	ClientID      int64
}

// ActiveAppointment is one row of the candidate list used by the cancel and
// reschedule flows. Services is the comma-joined service names.
type ActiveAppointment struct {
	ID       int64
	EventID  string
	When     time.Time
	Services string
}
