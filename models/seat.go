package models

import "time"

// SeatStatus enumerates the persisted states of a seat.
// ConfirmExpired is never written to the store; it is derived at read
// time when a confirm-required seat's end time has already passed.
type SeatStatus string

const (
	SeatStatusBreak           SeatStatus = "break"
	SeatStatusConfirmRequired SeatStatus = "confirm_required"
	SeatStatusConfirmExpired  SeatStatus = "confirm_expired"
	SeatStatusConfirmed       SeatStatus = "confirmed"
	SeatStatusAttended        SeatStatus = "attended"
)

// SeatPriority orders bookings when they compete for the same slices.
// A private (paid member) booking outranks an experience (trial) one.
type SeatPriority int

const (
	PriorityExperience SeatPriority = 1
	PriorityPrivate    SeatPriority = 2
)

// Seat is the atomic bookable or blocked unit on a coach's day.
// Start and End are minutes from midnight, half-open [Start, End).
// A seat is never hard-deleted once booked; cancellation flips Valid
// to false and stamps CanceledAt. Break seats carry no customer.
type Seat struct {
	ID          string       `bson:"id" json:"id"`
	BizID       string       `bson:"biz_id" json:"biz_id"`
	CoachID     string       `bson:"coach_id" json:"coach_id"`
	CustomerID  string       `bson:"customer_id,omitempty" json:"customer_id,omitempty"` // empty for break seats
	Date        int          `bson:"date" json:"date"`                                   // calendar day, YYYYMMDD
	Start       int          `bson:"start" json:"start"`                                 // minutes from midnight
	End         int          `bson:"end" json:"end"`                                     // minutes from midnight
	Status      SeatStatus   `bson:"status" json:"status"`
	Priority    SeatPriority `bson:"priority,omitempty" json:"priority,omitempty"`
	Valid       bool         `bson:"valid" json:"valid"`
	Note        string       `bson:"note,omitempty" json:"note,omitempty"`
	ReservedAt  time.Time    `bson:"reserved_at" json:"reserved_at"`
	ConfirmedAt *time.Time   `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	CanceledAt  *time.Time   `bson:"canceled_at,omitempty" json:"canceled_at,omitempty"`
	CheckedInAt *time.Time   `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// IsBreak reports whether the seat is a coach-entered rest block.
func (s *Seat) IsBreak() bool { return s.Status == SeatStatusBreak }
