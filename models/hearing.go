package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Hearing statuses
const (
	HearingStatusScheduled = "scheduled"
	HearingStatusCompleted = "completed"
	HearingStatusAdjourned = "adjourned"
	HearingStatusCancelled = "cancelled"
)

// Hearing holds the structure for the hearings collection in mongo
type Hearing struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details HearingDetails     `json:"hearing" bson:"hearing"`
	Version int32              `json:"__v" bson:"__v"`
}

// HearingDetails holds the structure for the inner hearing details
type HearingDetails struct {
	CaseID      string             `json:"caseID" bson:"caseID"`
	HearingDate primitive.DateTime `json:"hearingDate" bson:"hearingDate"`
	JudgeID     string             `json:"judgeID" bson:"judgeID"`
	CourtRoom   string             `json:"courtRoom,omitempty" bson:"courtRoom,omitempty"`
	Purpose     string             `json:"purpose" bson:"purpose"`
	Status      string             `json:"status" bson:"status"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`

	NextHearingDate   *primitive.DateTime `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`
	AdjournmentReason string              `json:"adjournmentReason,omitempty" bson:"adjournmentReason,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
