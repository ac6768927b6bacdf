package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ViewEvent holds the structure for the viewevents collection in mongo.
// Events are append-only; one document per view request, no deduplication.
type ViewEvent struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ViewEventDetails   `json:"viewEvent" bson:"viewEvent"`
}

// ViewEventDetails holds the structure for the inner view event details
type ViewEventDetails struct {
	CaseID    string             `json:"caseID" bson:"caseID"`
	UserID    string             `json:"userID,omitempty" bson:"userID,omitempty"` // empty = anonymous
	IPAddress string             `json:"ipAddress,omitempty" bson:"ipAddress,omitempty"`
	UserAgent string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	ViewedAt  primitive.DateTime `json:"viewedAt" bson:"viewedAt"`
}
