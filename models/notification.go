package models

// SeatNoticeKind selects the notification template for a seat event.
type SeatNoticeKind string

const (
	NoticeCustomerConfirmed    SeatNoticeKind = "customer_confirmed"
	NoticeCustomerCancelled    SeatNoticeKind = "customer_cancelled"
	NoticeCoachConfirmRequired SeatNoticeKind = "coach_confirm_required"
)

// SeatNotice is the payload enqueued for the notification worker.
// It carries just enough to render the push without re-reading the seat.
type SeatNotice struct {
	Kind       SeatNoticeKind `json:"kind"`
	SeatID     string         `json:"seat_id"`
	CoachID    string         `json:"coach_id"`
	CustomerID string         `json:"customer_id,omitempty"`
	Date       int            `json:"date"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
}
