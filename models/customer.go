package models

import "time"

// Customer is a member or trial visitor of a studio.
type Customer struct {
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
