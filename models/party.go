package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseParty holds the structure for the caseparties collection in mongo.
// A party may or may not be linked to a registered account; unlinked parties
// carry their own freeform contact details.
type CaseParty struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CasePartyDetails   `json:"party" bson:"party"`
	Version int32              `json:"__v" bson:"__v"`
}

// CasePartyDetails holds the structure for the inner party details
type CasePartyDetails struct {
	CaseID string `json:"caseID" bson:"caseID"`
	UserID string `json:"userID,omitempty" bson:"userID,omitempty"` // empty when the party has no registered account
	Name   string `json:"name" bson:"name"`
	Role   string `json:"role,omitempty" bson:"role,omitempty"` // petitioner, respondent, counsel, ...
	Email  string `json:"email,omitempty" bson:"email,omitempty"`
	Phone  string `json:"phone,omitempty" bson:"phone,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
