package models

import "time"

// Contract is a signed agreement covering one or more customers. The
// purchased credits live on its content lines; the contract itself only
// carries identity and the beneficiary list.
type Contract struct {
	ID          string    `bson:"id" json:"id"`
	BizID       string    `bson:"biz_id" json:"biz_id"`
	CustomerIDs []string  `bson:"customer_ids" json:"customer_ids"` // beneficiaries sharing the credits
	SignedAt    time.Time `bson:"signed_at" json:"signed_at"`
	Valid       bool      `bson:"valid" json:"valid"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ContractContent is one purchased course line: Total credits bought
// versus Attended credits consumed, for one coach. Attendance deducts
// from the oldest still-valid line with remaining credit.
type ContractContent struct {
	ID         string    `bson:"id" json:"id"`
	ContractID string    `bson:"contract_id" json:"contract_id"`
	CoachID    string    `bson:"coach_id" json:"coach_id"`
	GroupType  string    `bson:"group_type" json:"group_type"` // e.g. "private", "small_group"
	Total      int       `bson:"total" json:"total"`
	Attended   int       `bson:"attended" json:"attended"`
	Valid      bool      `bson:"valid" json:"valid"`
	SignedAt   time.Time `bson:"signed_at" json:"signed_at"`
}

// Remaining reports the credits still available on the line.
func (c *ContractContent) Remaining() int { return c.Total - c.Attended }
