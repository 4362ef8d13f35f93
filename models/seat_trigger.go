package models

import "time"

// SeatTrigger is a weekly recurrence rule that materializes a
// confirm-required seat for its next occurrence. Triggers for the same
// coach must not overlap each other's weekly window.
type SeatTrigger struct {
	ID         string    `bson:"id" json:"id"`
	BizID      string    `bson:"biz_id" json:"biz_id"`
	CoachID    string    `bson:"coach_id" json:"coach_id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	Weekday    int       `bson:"weekday" json:"weekday"` // 0 = Sunday .. 6 = Saturday
	Start      int       `bson:"start" json:"start"`     // minutes from midnight
	End        int       `bson:"end" json:"end"`
	Active     bool      `bson:"active" json:"active"`
	LastDate   int       `bson:"last_date,omitempty" json:"last_date,omitempty"` // last materialized YYYYMMDD
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
