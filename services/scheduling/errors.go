package scheduling

import "errors"

// Domain failures surfaced to handlers. All of them leave the seat
// store in its pre-mutation state.
var (
	// ErrInvalidInterval rejects windows not strictly longer than one slice.
	ErrInvalidInterval = errors.New("interval must span more than the minimum granule")
	// ErrSlotOccupied is the hard-conflict failure of Reserve.
	ErrSlotOccupied = errors.New("time slot unavailable")
	// ErrOccupied rejects a break over booked time.
	ErrOccupied = errors.New("interval intersects a booked seat")
	// ErrBreakNotFound means no break seat fully contains the interval.
	ErrBreakNotFound = errors.New("no break covering the interval")
	// ErrInvalidState rejects confirming a seat outside a confirmable state.
	ErrInvalidState = errors.New("seat is not in a confirmable state")
	// ErrExperienceLimit enforces the one-outstanding-trial rule.
	ErrExperienceLimit = errors.New("customer already holds an outstanding trial booking")
	// ErrNotAllowed rejects a status the acting role may not create.
	ErrNotAllowed = errors.New("actor may not create a seat in this status")
	// ErrSeatNotFound is returned for unknown seat IDs.
	ErrSeatNotFound = errors.New("seat not found")
)
