package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseDocument holds the metadata for a document attached to a case. Byte
// storage lives elsewhere; only the metadata row is kept here.
type CaseDocument struct {
	ID      primitive.ObjectID  `json:"_id" bson:"_id"`
	Details CaseDocumentDetails `json:"document" bson:"document"`
}

// CaseDocumentDetails holds the structure for the inner document details
type CaseDocumentDetails struct {
	CaseID         string `json:"caseID" bson:"caseID"`
	Title          string `json:"title" bson:"title"`
	FileName       string `json:"fileName" bson:"fileName"`
	IsConfidential bool   `json:"isConfidential" bson:"isConfidential"`
	UploadedBy     string `json:"uploadedBy" bson:"uploadedBy"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
