package model

import "time"

// User is an entry in the identity directory. Credentials live with the
// identity provider; only the profile is stored here.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	FullName  string    `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Roles     []string  `json:"roles" bson:"roles"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
