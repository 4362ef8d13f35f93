package models

import "time"

// LedgerEntryKind tags the event that moved lesson credits.
type LedgerEntryKind string

const (
	LedgerEntryAttend   LedgerEntryKind = "attend"   // one credit consumed by attendance
	LedgerEntryRefund   LedgerEntryKind = "refund"   // attendance reversed by cancellation
	LedgerEntryRecharge LedgerEntryKind = "recharge" // manual top-up
	LedgerEntryDeduct   LedgerEntryKind = "deduct"   // manual deduction
)

// LedgerEntry is an immutable record of a lesson-credit movement,
// kept append-only for audit display. Delta is signed: positive adds
// remaining credit, negative consumes it.
type LedgerEntry struct {
	ID                string          `bson:"id" json:"id"`
	BizID             string          `bson:"biz_id" json:"biz_id"`
	TraineeID         string          `bson:"trainee_id,omitempty" json:"trainee_id,omitempty"`
	CustomerID        string          `bson:"customer_id" json:"customer_id"`
	CoachID           string          `bson:"coach_id" json:"coach_id"`
	SeatID            string          `bson:"seat_id,omitempty" json:"seat_id,omitempty"`
	ContractContentID string          `bson:"contract_content_id,omitempty" json:"contract_content_id,omitempty"`
	Kind              LedgerEntryKind `bson:"kind" json:"kind"`
	Delta             int             `bson:"delta" json:"delta"`
	Note              string          `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
}
