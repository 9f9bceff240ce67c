package domain

import (
	"time"
)

// User is an authenticated account. Its ID is the owner_id of the user's
// profile, plans and plan generations.
// Email is unique. PasswordHash is never serialized to JSON.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
