package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Password holds the bcrypt hash and
// is never serialized to JSON.
type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name               string               `bson:"name" json:"name"`
	Email              string               `bson:"email" json:"email"`
	Password           string               `bson:"password,omitempty" json:"-"`
	BookmarkedShelters []primitive.ObjectID `bson:"bookmarked_shelters" json:"bookmarkedShelters"`
	CreatedAt          time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the subset of user fields returned from auth endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}
