package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Bookmark holds the structure for the bookmarks collection in mongo.
// (userID, caseID) is unique together; every create/delete is paired with an
// increment/decrement of the owning case's bookmarkCount.
type Bookmark struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details BookmarkDetails    `json:"bookmark" bson:"bookmark"`
}

// BookmarkDetails holds the structure for the inner bookmark details
type BookmarkDetails struct {
	UserID string `json:"userID" bson:"userID"`
	CaseID string `json:"caseID" bson:"caseID"`
	Notes  string `json:"notes,omitempty" bson:"notes,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
