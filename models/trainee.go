package models

import "time"

// TraineeKind describes why a customer is attached to a coach.
type TraineeKind string

const (
	TraineeKindPrivate     TraineeKind = "private"     // paying member with purchased lessons
	TraineeKindExperience  TraineeKind = "experience"  // trial customer
	TraineeKindMeasurement TraineeKind = "measurement" // body-measurement only
)

// Trainee binds one customer to one coach. The lesson counters are the
// legacy fixed-total ledger; contract lines supersede them but the
// counters are still maintained for audit display and manual top-ups.
type Trainee struct {
	ID              string      `bson:"id" json:"id"`
	BizID           string      `bson:"biz_id" json:"biz_id"`
	CoachID         string      `bson:"coach_id" json:"coach_id"`
	CustomerID      string      `bson:"customer_id" json:"customer_id"`
	Kind            TraineeKind `bson:"kind" json:"kind"`
	IsBind          bool        `bson:"is_bind" json:"is_bind"` // active membership relation
	TotalLessons    int         `bson:"total_lessons" json:"total_lessons"`
	AttendedLessons int         `bson:"attended_lessons" json:"attended_lessons"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
}
