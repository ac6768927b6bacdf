package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Capabilities a staff account may hold
const (
	CapabilityJudge = "judge"
	CapabilityClerk = "clerk"
	CapabilityAdmin = "admin"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user details
type UserDetails struct {
	Name         string   `json:"name" bson:"name"`
	Email        string   `json:"email" bson:"email"`
	Password     string   `json:"password,omitempty" bson:"password"`
	Capabilities []string `json:"capabilities" bson:"capabilities"`
	Active       bool     `json:"active" bson:"active"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// HasCapability reports whether the user holds the named capability
func (u *User) HasCapability(capability string) bool {
	for _, c := range u.Details.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
