package models

import "time"

// Coach is a staff account inside one studio (biz).
type Coach struct {
	ID           string    `bson:"id" json:"id"`
	BizID        string    `bson:"biz_id" json:"biz_id"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone" json:"phone"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	FCMToken     string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// CoachBrief is the denormalized display slice cached for notification
// rendering. It is never used for conflict checks.
type CoachBrief struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Brief projects the cacheable display fields.
func (c *Coach) Brief() CoachBrief {
	return CoachBrief{ID: c.ID, Name: c.Name, Avatar: c.Avatar}
}
