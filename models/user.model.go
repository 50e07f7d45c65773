package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Bson field names are camelCase to match
// existing documents in the users collection.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Phone          string             `bson:"phone" json:"phone"`
	Address        string             `bson:"address" json:"address"`
	City           string             `bson:"city" json:"city"`
	State          string             `bson:"state" json:"state"`
	ZipCode        string             `bson:"zipCode" json:"zipCode"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Orders         []Order            `bson:"orders" json:"orders"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Sanitized returns a copy without the password hash and with a non-nil
// order slice, ready to leave the process.
func (u *User) Sanitized() *User {
	out := *u
	out.Password = ""
	out.Orders = append([]Order{}, u.Orders...)
	return &out
}

// ProfileUpdate holds the editable contact fields. A nil field is left as
// stored; a non-nil field is written as given, empty string included.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zipCode"`
}
